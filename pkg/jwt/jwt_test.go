package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken("player@one.com", "s3cret", time.Hour)
	require.NoError(t, err)

	sub, err := ParseToken(token, "s3cret")
	require.NoError(t, err)
	require.Equal(t, "player@one.com", sub)
}

func TestParseToken_Rejects(t *testing.T) {
	expired, err := GenerateToken("player@one.com", "s3cret", -time.Minute)
	require.NoError(t, err)
	valid, err := GenerateToken("player@one.com", "s3cret", time.Hour)
	require.NoError(t, err)

	cases := map[string]struct{ token, secret string }{
		"expired":      {expired, "s3cret"},
		"wrong secret": {valid, "other"},
		"garbage":      {"not.a.token", "s3cret"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.token, tc.secret)
			require.Error(t, err)
		})
	}
}

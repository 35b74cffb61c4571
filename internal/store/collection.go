package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// LoadCollection decodes the JSON array stored under key. A missing key is an
// empty collection.
func LoadCollection[T any](ctx context.Context, s *Store, key string) ([]T, error) {
	return DecodeCollection[T](s.Read(ctx, key).Value)
}

// UpdateCollection runs fn on the freshest decoded collection and stores what
// it returns.
func UpdateCollection[T any](ctx context.Context, s *Store, origin, key string, fn func([]T) ([]T, error)) ([]T, error) {
	var result []T
	_, err := s.Update(ctx, origin, key, func(current []byte) ([]byte, error) {
		items, err := DecodeCollection[T](current)
		if err != nil {
			return nil, err
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		result = next
		return json.Marshal(next)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DecodeCollection parses a stored collection value.
func DecodeCollection[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return items, nil
}

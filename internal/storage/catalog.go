package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Tiliavir/trackmytime/internal/model"
)

// catalogFile stores a small collection as one JSON array, in insertion order.
type catalogFile[T model.Record] struct {
	path string
	kind string
}

func (c *catalogFile[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", c.path, err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt JSON in %s: %w", c.path, err)
	}
	return items, nil
}

func (c *catalogFile[T]) save(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return writeAtomic(c.path, data)
}

func (c *catalogFile[T]) indexOf(items []T, id string) int {
	for i, item := range items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

func (c *catalogFile[T]) List(ctx context.Context) ([]T, error) {
	return c.load()
}

func (c *catalogFile[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.load()
	if err != nil {
		return zero, err
	}
	i := c.indexOf(items, id)
	if i < 0 {
		return zero, fmt.Errorf("%s %s: %w", c.kind, id, ErrNotFound)
	}
	return items[i], nil
}

func (c *catalogFile[T]) Insert(ctx context.Context, v T) error {
	items, err := c.load()
	if err != nil {
		return err
	}
	if c.indexOf(items, v.RecordID()) >= 0 {
		return fmt.Errorf("%s %s: %w", c.kind, v.RecordID(), ErrExists)
	}
	return c.save(append(items, v))
}

func (c *catalogFile[T]) Update(ctx context.Context, v T) error {
	items, err := c.load()
	if err != nil {
		return err
	}
	i := c.indexOf(items, v.RecordID())
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.kind, v.RecordID(), ErrNotFound)
	}
	items[i] = v
	return c.save(items)
}

func (c *catalogFile[T]) Delete(ctx context.Context, id string) error {
	items, err := c.load()
	if err != nil {
		return err
	}
	i := c.indexOf(items, id)
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.kind, id, ErrNotFound)
	}
	return c.save(append(items[:i], items[i+1:]...))
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

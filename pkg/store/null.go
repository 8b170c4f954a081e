package store

import "context"

// NullStore discards records.
type NullStore struct{}

// NewNullStore creates a store that keeps nothing.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Save(context.Context, *Record) error { return nil }

func (NullStore) Get(context.Context, string) (*Record, error) { return nil, ErrNotFound }

func (NullStore) Close(context.Context) error { return nil }

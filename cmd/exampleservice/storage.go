package main

import (
	"context"
	"sync"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/core"
)

// StorageRequest is the storage-stage sum type for this service: every
// variant reports its own Kind and carries the one-shot reply channel the
// issuing logic executor waits on.
type StorageRequest interface {
	Kind() string
}

// ReserveItemRequest asks the store to reserve quantity units of itemID.
type ReserveItemRequest struct {
	ItemID   string
	Quantity int
	ReplyTo  chan api.Result[struct{}]
}

func (ReserveItemRequest) Kind() string { return "reserve_item" }

// ReleaseItemRequest undoes a prior reservation. It is the compensating
// action rollback.Stack replays when a multi-item reservation fails partway
// through.
type ReleaseItemRequest struct {
	ItemID   string
	Quantity int
	ReplyTo  chan api.Result[struct{}]
}

func (ReleaseItemRequest) Kind() string { return "release_item" }

// item tracks one stock keeping unit's total and reserved quantity.
type item struct {
	quantity int
	reserved int
}

// Store is an in-memory stand-in for the original's Postgres-backed
// inventory table: total quantity minus reserved quantity is what remains
// available to reserve.
type Store struct {
	mu    sync.Mutex
	items map[string]*item
}

// NewStore seeds a Store from itemID -> total quantity.
func NewStore(seed map[string]int) *Store {
	items := make(map[string]*item, len(seed))
	for id, qty := range seed {
		items[id] = &item{quantity: qty}
	}
	return &Store{items: items}
}

func (s *Store) reserve(itemID string, quantity int) *core.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok {
		return core.Newf(core.ErrorKindStorage, "unknown item %q", itemID)
	}
	if it.quantity-it.reserved < quantity {
		return core.Newf(core.ErrorKindStorage, "insufficient stock for item %q", itemID)
	}
	it.reserved += quantity
	return nil
}

func (s *Store) release(itemID string, quantity int) *core.Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok {
		return core.Newf(core.ErrorKindStorage, "unknown item %q", itemID)
	}
	it.reserved -= quantity
	if it.reserved < 0 {
		it.reserved = 0
	}
	return nil
}

// ReserveItemExecutor handles ReserveItemRequest.
func ReserveItemExecutor(store *Store) func(ctx context.Context, req StorageRequest) error {
	return func(ctx context.Context, req StorageRequest) error {
		r := req.(ReserveItemRequest)
		if err := store.reserve(r.ItemID, r.Quantity); err != nil {
			r.ReplyTo <- api.Result[struct{}]{Err: err}
			return err
		}
		r.ReplyTo <- api.Result[struct{}]{Ok: struct{}{}}
		return nil
	}
}

// ReleaseItemExecutor handles ReleaseItemRequest.
func ReleaseItemExecutor(store *Store) func(ctx context.Context, req StorageRequest) error {
	return func(ctx context.Context, req StorageRequest) error {
		r := req.(ReleaseItemRequest)
		if err := store.release(r.ItemID, r.Quantity); err != nil {
			r.ReplyTo <- api.Result[struct{}]{Err: err}
			return err
		}
		r.ReplyTo <- api.Result[struct{}]{Ok: struct{}{}}
		return nil
	}
}

package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/storage"
)

func startStorage(t *testing.T, store *Store) (chan<- StorageRequest, context.CancelFunc) {
	t.Helper()

	ch := make(chan StorageRequest, 1024)
	executors := map[string]storage.Executor[StorageRequest]{
		"reserve_item": ReserveItemExecutor(store),
		"release_item": ReleaseItemExecutor(store),
	}
	dispatch := storage.NewDispatch[StorageRequest](ch, executors, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go dispatch.Run(ctx)

	return ch, cancel
}

func TestReserveStockExecutorReservesEveryLine(t *testing.T) {
	store := NewStore(map[string]int{"widget": 10, "gadget": 10})
	storageSender, cancel := startStorage(t, store)
	defer cancel()

	reply := make(chan api.Result[ReservationResult], 1)
	req := ReserveStockRequest{
		OrderID: "order-1",
		Items:   []ItemQuantity{{ItemID: "widget", Quantity: 2}, {ItemID: "gadget", Quantity: 3}},
		ReplyTo: reply,
	}

	err := ReserveStockExecutor(context.Background(), req, storageSender)
	require.NoError(t, err)

	select {
	case result := <-reply:
		require.Nil(t, result.Err)
		assert.Equal(t, 2, result.Ok.ItemsReserved)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reservation result")
	}
}

func TestReserveStockExecutorRollsBackOnPartialFailure(t *testing.T) {
	store := NewStore(map[string]int{"widget": 10, "gadget": 1})
	storageSender, cancel := startStorage(t, store)
	defer cancel()

	reply := make(chan api.Result[ReservationResult], 1)
	req := ReserveStockRequest{
		OrderID: "order-2",
		Items:   []ItemQuantity{{ItemID: "widget", Quantity: 2}, {ItemID: "gadget", Quantity: 5}},
		ReplyTo: reply,
	}

	err := ReserveStockExecutor(context.Background(), req, storageSender)
	require.Error(t, err)

	select {
	case result := <-reply:
		require.NotNil(t, result.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for failure reply")
	}

	require.Eventually(t, func() bool {
		return store.reserve("widget", 10) == nil
	}, time.Second, 10*time.Millisecond, "widget reservation was not rolled back")
}

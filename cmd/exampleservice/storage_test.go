package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timour/amqprpc/api"
)

func TestStoreReserveFailsWhenInsufficientStock(t *testing.T) {
	store := NewStore(map[string]int{"widget": 5})

	require.Nil(t, store.reserve("widget", 5))
	err := store.reserve("widget", 1)
	require.NotNil(t, err)
}

func TestStoreReleaseFreesReservedQuantity(t *testing.T) {
	store := NewStore(map[string]int{"widget": 5})

	require.Nil(t, store.reserve("widget", 5))
	require.Nil(t, store.release("widget", 5))
	require.Nil(t, store.reserve("widget", 5))
}

func TestReserveItemExecutorRepliesOkOnSuccess(t *testing.T) {
	store := NewStore(map[string]int{"widget": 5})
	executor := ReserveItemExecutor(store)

	reply := make(chan api.Result[struct{}], 1)
	err := executor(context.Background(), ReserveItemRequest{ItemID: "widget", Quantity: 3, ReplyTo: reply})

	require.NoError(t, err)
	result := <-reply
	assert.Nil(t, result.Err)
}

func TestReserveItemExecutorRepliesErrOnInsufficientStock(t *testing.T) {
	store := NewStore(map[string]int{"widget": 1})
	executor := ReserveItemExecutor(store)

	reply := make(chan api.Result[struct{}], 1)
	err := executor(context.Background(), ReserveItemRequest{ItemID: "widget", Quantity: 5, ReplyTo: reply})

	require.Error(t, err)
	result := <-reply
	require.NotNil(t, result.Err)
}

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/logic"
	"github.com/timour/amqprpc/rollback"
)

// storageTimeout bounds every individual send-to-storage / wait-for-storage
// round trip inside the logic stage.
const storageTimeout = 2 * time.Second

// LogicRequest is the logic-stage sum type for this service.
type LogicRequest interface {
	Kind() string
}

// ReserveStockRequest asks the logic stage to reserve every line item of an
// order, rolling back whatever was already reserved if any line fails.
type ReserveStockRequest struct {
	OrderID string
	Items   []ItemQuantity
	ReplyTo chan api.Result[ReservationResult]
}

func (ReserveStockRequest) Kind() string { return "reserve_stock" }

// ReserveStockExecutor reserves req.Items one at a time against the storage
// stage. On the first failure the logic timeout helper has already replied
// to req.ReplyTo with a LogicError; the executor then replays every
// already-confirmed reservation's compensating release, in reverse order,
// and returns that error.
func ReserveStockExecutor(ctx context.Context, logicRequest LogicRequest, storageSender chan<- StorageRequest) error {
	req := logicRequest.(ReserveStockRequest)
	compensations := rollback.NewStack[StorageRequest](storageSender)

	for _, line := range req.Items {
		reserveReply := make(chan api.Result[struct{}], 1)
		reserveReq := ReserveItemRequest{ItemID: line.ItemID, Quantity: line.Quantity, ReplyTo: reserveReply}

		replier, sendErr := logic.TimeoutSendStorageRequest[StorageRequest, ReservationResult](
			ctx, storageTimeout, reserveReq, storageSender, req.ReplyTo,
		)
		if sendErr != nil {
			rollbackOnFailure(ctx, compensations)
			return sendErr
		}

		_, _, recvErr := logic.TimeoutReceiveStorageResponse[struct{}, ReservationResult](
			ctx, storageTimeout, reserveReply, replier,
		)
		if recvErr != nil {
			rollbackOnFailure(ctx, compensations)
			return recvErr
		}

		compensations.Push(ReleaseItemRequest{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			ReplyTo:  make(chan api.Result[struct{}], 1),
		})
	}

	req.ReplyTo <- api.Result[ReservationResult]{
		Ok: ReservationResult{OrderID: req.OrderID, ItemsReserved: len(req.Items)},
	}
	return nil
}

func rollbackOnFailure(ctx context.Context, compensations *rollback.Stack[StorageRequest]) {
	if snapshot := compensations.Rollback(ctx); snapshot != nil {
		slog.Error("reservation rollback did not fully complete", slog.String("snapshot", snapshot.String()))
	}
}

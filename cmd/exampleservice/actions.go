package main

import (
	"time"

	"github.com/timour/amqprpc/api"
	"github.com/timour/amqprpc/request"
)

// apiTimeout bounds how long the API stage waits for the logic stage to
// reply before surfacing an ApiError to the caller.
const apiTimeout = 5 * time.Second

// reserveStockAction builds the stock.reserve api.Action: extract the
// payload, hand a fresh reply channel to the logic stage, and wait.
func reserveStockAction() api.Action[LogicRequest] {
	executor := func(req request.Request, logicSender chan<- LogicRequest) (any, error) {
		payload, err := request.ExtractPayload[ReserveStockPayload](req)
		if err != nil {
			return nil, err
		}

		replyTo := make(chan api.Result[ReservationResult], 1)
		logicRequest := ReserveStockRequest{OrderID: payload.OrderID, Items: payload.Items, ReplyTo: replyTo}

		return api.ApiAction[LogicRequest, ReservationResult](logicRequest, logicSender, apiTimeout, replyTo)
	}

	return api.NewAction("stock.reserve", executor)
}

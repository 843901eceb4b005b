package service

import "errors"

var (
	// ErrInvalidOrderRequest is returned for empty or malformed requests.
	ErrInvalidOrderRequest = errors.New("invalid order request")

	// ErrOutOfStock is the expected business failure when any SKU cannot be fulfilled.
	ErrOutOfStock = errors.New("product is not in stock, please try again later")

	// ErrInventoryUnavailable wraps transport and protocol faults of the stock lookup.
	ErrInventoryUnavailable = errors.New("inventory service unavailable")

	// ErrMalformedInventoryResponse means the inventory service answered
	// without stock information for the requested SKUs.
	ErrMalformedInventoryResponse = errors.New("malformed inventory response")

	// ErrPersistenceFailure wraps storage faults; nothing was committed.
	ErrPersistenceFailure = errors.New("failed to persist order")

	// ErrNotificationSend is returned by the relay when the broker did not
	// acknowledge the notification. The order itself stays committed.
	ErrNotificationSend = errors.New("error while sending message to kafka")

	ErrOrderNotFound = errors.New("order not found")
)

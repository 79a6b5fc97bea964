package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fill is one execution report applied to an order. ExecutionID is unique and
// makes redelivered reports no-ops.
type Fill struct {
	ID          string
	OrderID     string
	ExecutionID string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Commission  decimal.Decimal
	ExecutedAt  time.Time
	CreatedAt   time.Time
}

// executionNamespace scopes derived execution IDs.
var executionNamespace = uuid.MustParse("6f1c1b52-6d0e-4c55-9b59-2f6b8f0d7a10")

// DeriveExecutionID returns a stable ID for venues that do not send one, so the
// same report always maps to the same key.
func DeriveExecutionID(orderID string, qty, price decimal.Decimal, executedAt time.Time) string {
	key := orderID + "|" + qty.String() + "|" + price.String() + "|" + executedAt.UTC().Format(time.RFC3339Nano)
	return uuid.NewSHA1(executionNamespace, []byte(key)).String()
}

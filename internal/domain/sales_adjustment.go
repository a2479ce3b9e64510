package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentKind names the admin override that touched the ledger.
type AdjustmentKind string

const (
	AdjustmentReset  AdjustmentKind = "reset"
	AdjustmentManual AdjustmentKind = "adjust"
)

// SalesAdjustment records an admin override of an event's sales aggregates.
type SalesAdjustment struct {
	ID         string
	EventID    string
	ActorID    string
	Kind       AdjustmentKind
	OldSold    int
	NewSold    int
	OldRevenue decimal.Decimal
	NewRevenue decimal.Decimal
	CreatedAt  time.Time
}

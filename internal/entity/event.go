package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// LiveSellingEvent represents the live_selling_events table. AdsFee is the
// flat advertising spend for the event; it is split evenly across every
// order currently attributed to the event, never persisted per order.
type LiveSellingEvent struct {
	Id        int       `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	LiveSellingEventInsert
}

type LiveSellingEventInsert struct {
	EventDate time.Time       `db:"event_date" valid:"required"`
	AdsFee    decimal.Decimal `db:"ads_fee"`
	Notes     sql.NullString  `db:"notes" valid:"-"`
}

func (e *LiveSellingEvent) AdsFeeDecimal() decimal.Decimal {
	return e.AdsFee.Round(2)
}

// EventSet is an event lookup keyed by event id.
type EventSet map[int]LiveSellingEvent

func EventSetFromEvents(events []LiveSellingEvent) EventSet {
	s := make(EventSet, len(events))
	for _, e := range events {
		s[e.Id] = e
	}
	return s
}

package dto

import (
	"database/sql"
	"time"

	"github.com/donnaphatt/product-tracking-app/internal/entity"
	"github.com/shopspring/decimal"
)

type EventCreateRequest struct {
	EventDate Date            `json:"event_date"`
	AdsFee    decimal.Decimal `json:"ads_fee"`
	Notes     string          `json:"notes"`
}

type EventResponse struct {
	Id        int             `json:"event_id"`
	EventDate Date            `json:"event_date"`
	AdsFee    decimal.Decimal `json:"ads_fee"`
	Notes     string          `json:"notes,omitempty"`
}

func ConvertEventCreateRequestToEntity(req *EventCreateRequest) *entity.LiveSellingEventInsert {
	date := req.EventDate.Time
	if date.IsZero() {
		date = time.Now().Truncate(24 * time.Hour)
	}
	event := &entity.LiveSellingEventInsert{
		EventDate: date,
		AdsFee:    req.AdsFee,
	}
	if req.Notes != "" {
		event.Notes = sql.NullString{String: req.Notes, Valid: true}
	}
	return event
}

func ConvertEntityEventToResponse(event *entity.LiveSellingEvent) EventResponse {
	return EventResponse{
		Id:        event.Id,
		EventDate: NewDate(event.EventDate),
		AdsFee:    event.AdsFeeDecimal(),
		Notes:     event.Notes.String,
	}
}

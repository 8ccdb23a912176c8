package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/donnaphatt/product-tracking-app/internal/dependency"
	"github.com/donnaphatt/product-tracking-app/internal/entity"
)

// ErrEventNotFound is returned when a live-selling event id resolves to no row.
var ErrEventNotFound = errors.New("live selling event not found")

type eventStore struct {
	*MYSQLStore
}

// Events returns an object implementing the events interface
func (ms *MYSQLStore) Events() dependency.Events {
	return &eventStore{
		MYSQLStore: ms,
	}
}

func (es *eventStore) AddEvent(ctx context.Context, event *entity.LiveSellingEventInsert) (int, error) {
	query := `
	INSERT INTO live_selling_events (event_date, ads_fee, notes)
	VALUES (:eventDate, :adsFee, :notes)`

	id, err := ExecNamedLastId(ctx, es.db, query, map[string]any{
		"eventDate": event.EventDate,
		"adsFee":    event.AdsFee,
		"notes":     event.Notes,
	})
	if err != nil {
		return 0, fmt.Errorf("can't insert live selling event: %w", err)
	}
	return id, nil
}

func (es *eventStore) GetAllEvents(ctx context.Context) ([]entity.LiveSellingEvent, error) {
	query := `
	SELECT id, created_at, event_date, ads_fee, notes
	FROM live_selling_events ORDER BY id`

	events, err := QueryListNamed[entity.LiveSellingEvent](ctx, es.db, query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get live selling events: %w", err)
	}
	return events, nil
}

func (es *eventStore) GetEventById(ctx context.Context, id int) (*entity.LiveSellingEvent, error) {
	query := `
	SELECT id, created_at, event_date, ads_fee, notes
	FROM live_selling_events WHERE id = :id`

	event, err := QueryNamedOne[entity.LiveSellingEvent](ctx, es.db, query, map[string]any{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("can't get live selling event by id: %w", err)
	}
	return &event, nil
}

func (es *eventStore) DeleteEventById(ctx context.Context, id int) error {
	affected, err := ExecNamedRowsAffected(ctx, es.db,
		`DELETE FROM live_selling_events WHERE id = :id`, map[string]any{
			"id": id,
		})
	if err != nil {
		return fmt.Errorf("can't delete live selling event: %w", err)
	}
	if affected == 0 {
		return ErrEventNotFound
	}
	return nil
}

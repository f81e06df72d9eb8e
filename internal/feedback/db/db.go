package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-feedback/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- EVENTS ----------------

// ListEvents returns all events in stable creation order.
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetEventByID returns the event, or (nil, nil) when no row exists.
func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ---------------- FEEDBACK ----------------

// ListFeedback returns one page of matching rows, newest first. Equal
// timestamps fall back to id order so paging stays deterministic.
func (d *DB) ListFeedback(ctx context.Context, filter *models.FeedbackFilter, limit, offset int) ([]models.Feedback, error) {
	var items []models.Feedback
	q := d.Bun.NewSelect().
		Model(&items).
		Order("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset)
	err := applyFilter(q, filter).Scan(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

// CountFeedback counts the rows matching the filter, ignoring pagination.
func (d *DB) CountFeedback(ctx context.Context, filter *models.FeedbackFilter) (int, error) {
	q := d.Bun.NewSelect().Model((*models.Feedback)(nil))
	return applyFilter(q, filter).Count(ctx)
}

// FeedbackForEvent returns every row for one event, newest first.
func (d *DB) FeedbackForEvent(ctx context.Context, eventID string) ([]models.Feedback, error) {
	var items []models.Feedback
	err := d.Bun.NewSelect().
		Model(&items).
		Where("event_id = ?", eventID).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

// EventStats computes the count and average rating for one event. The
// average is nil when the event has no feedback rows.
func (d *DB) EventStats(ctx context.Context, eventID string) (models.EventStats, error) {
	var count int
	var avg sql.NullFloat64
	err := d.Bun.NewSelect().
		Model((*models.Feedback)(nil)).
		ColumnExpr("count(*)").
		ColumnExpr("avg(rating)").
		Where("event_id = ?", eventID).
		Scan(ctx, &count, &avg)
	if err != nil {
		return models.EventStats{}, err
	}

	stats := models.EventStats{FeedbackCount: count}
	if avg.Valid {
		stats.AverageRating = &avg.Float64
	}
	return stats, nil
}

// InsertFeedback writes the row in a single insert, the only write in
// the system.
func (d *DB) InsertFeedback(ctx context.Context, fb *models.Feedback) error {
	_, err := d.Bun.NewInsert().Model(fb).Exec(ctx)
	return err
}

func applyFilter(q *bun.SelectQuery, filter *models.FeedbackFilter) *bun.SelectQuery {
	if filter == nil {
		return q
	}
	if filter.EventID != nil {
		q = q.Where("event_id = ?", *filter.EventID)
	}
	if filter.MinRating != nil {
		q = q.Where("rating >= ?", *filter.MinRating)
	}
	if filter.MaxRating != nil {
		q = q.Where("rating <= ?", *filter.MaxRating)
	}
	return q
}

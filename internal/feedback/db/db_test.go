package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-feedback/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if err := bunDB.ResetModel(ctx, (*models.Event)(nil)); err != nil {
		t.Fatalf("Failed to create events table: %v", err)
	}
	if err := bunDB.ResetModel(ctx, (*models.Feedback)(nil)); err != nil {
		t.Fatalf("Failed to create feedback table: %v", err)
	}

	return &DB{Bun: bunDB}
}

func insertEvent(t *testing.T, d *DB, id, name string) {
	t.Helper()
	event := models.Event{
		ID:        id,
		Name:      name,
		Date:      "2024-06-15",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := d.Bun.NewInsert().Model(&event).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to insert event: %v", err)
	}
}

func insertFeedback(t *testing.T, d *DB, id, eventID string, rating int, createdAt time.Time) {
	t.Helper()
	fb := models.Feedback{
		ID:         id,
		EventID:    eventID,
		AuthorName: "Alex",
		Content:    "Great talk",
		Rating:     rating,
		CreatedAt:  createdAt,
	}
	if err := d.InsertFeedback(context.Background(), &fb); err != nil {
		t.Fatalf("Failed to insert feedback %s: %v", id, err)
	}
}

func TestGetEventByID(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, d, "event-1", "React Summit")

	event, err := d.GetEventByID(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetEventByID failed: %v", err)
	}
	if event == nil || event.Name != "React Summit" {
		t.Errorf("Expected React Summit, got %+v", event)
	}

	// A missing id is not an error, just a nil event
	missing, err := d.GetEventByID(ctx, "no-such-event")
	if err != nil {
		t.Fatalf("GetEventByID for missing id returned error: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing event, got %+v", missing)
	}
}

func TestListEventsStableOrder(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, d, "event-b", "Second")
	insertEvent(t, d, "event-a", "First")

	events, err := d.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}

	again, err := d.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	for i := range events {
		if events[i].ID != again[i].ID {
			t.Errorf("Order not stable at position %d: %s vs %s", i, events[i].ID, again[i].ID)
		}
	}
}

func TestListFeedbackOrderAndPaging(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, d, "event-1", "React Summit")

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	insertFeedback(t, d, "fb-1", "event-1", 4, base)
	insertFeedback(t, d, "fb-2", "event-1", 5, base.Add(1*time.Minute))
	insertFeedback(t, d, "fb-3", "event-1", 3, base.Add(2*time.Minute))

	items, err := d.ListFeedback(ctx, nil, 10, 0)
	if err != nil {
		t.Fatalf("ListFeedback failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	// Newest first
	if items[0].ID != "fb-3" || items[1].ID != "fb-2" || items[2].ID != "fb-1" {
		t.Errorf("Wrong order: %s, %s, %s", items[0].ID, items[1].ID, items[2].ID)
	}

	page2, err := d.ListFeedback(ctx, nil, 2, 2)
	if err != nil {
		t.Fatalf("ListFeedback page 2 failed: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != "fb-1" {
		t.Errorf("Expected page 2 to hold fb-1, got %+v", page2)
	}
}

func TestListFeedbackEqualTimestampsDeterministic(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, d, "event-1", "React Summit")

	ts := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	insertFeedback(t, d, "fb-a", "event-1", 4, ts)
	insertFeedback(t, d, "fb-b", "event-1", 5, ts)

	items, err := d.ListFeedback(ctx, nil, 10, 0)
	if err != nil {
		t.Fatalf("ListFeedback failed: %v", err)
	}
	// Tie broken by id descending
	if items[0].ID != "fb-b" || items[1].ID != "fb-a" {
		t.Errorf("Expected fb-b before fb-a, got %s, %s", items[0].ID, items[1].ID)
	}
}

func TestFeedbackFiltersCombineWithAND(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, d, "event-1", "React Summit")
	insertEvent(t, d, "event-2", "TypeScript Workshop")

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	insertFeedback(t, d, "fb-1", "event-1", 2, base)
	insertFeedback(t, d, "fb-2", "event-1", 4, base.Add(time.Minute))
	insertFeedback(t, d, "fb-3", "event-1", 5, base.Add(2*time.Minute))
	insertFeedback(t, d, "fb-4", "event-2", 5, base.Add(3*time.Minute))

	eventID := "event-1"
	minRating := 3

	items, err := d.ListFeedback(ctx, &models.FeedbackFilter{EventID: &eventID, MinRating: &minRating}, 10, 0)
	if err != nil {
		t.Fatalf("ListFeedback with filter failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	for _, item := range items {
		if item.EventID != "event-1" {
			t.Errorf("Got feedback for wrong event: %s", item.EventID)
		}
		if item.Rating < 3 {
			t.Errorf("Got rating below filter: %d", item.Rating)
		}
	}

	maxRating := 4
	count, err := d.CountFeedback(ctx, &models.FeedbackFilter{EventID: &eventID, MinRating: &minRating, MaxRating: &maxRating})
	if err != nil {
		t.Fatalf("CountFeedback failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected count 1, got %d", count)
	}
}

func TestEventStats(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, d, "event-1", "React Summit")
	insertEvent(t, d, "event-2", "TypeScript Workshop")

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	insertFeedback(t, d, "fb-1", "event-1", 2, base)
	insertFeedback(t, d, "fb-2", "event-1", 5, base.Add(time.Minute))

	stats, err := d.EventStats(ctx, "event-1")
	if err != nil {
		t.Fatalf("EventStats failed: %v", err)
	}
	if stats.FeedbackCount != 2 {
		t.Errorf("Expected count 2, got %d", stats.FeedbackCount)
	}
	if stats.AverageRating == nil || *stats.AverageRating != 3.5 {
		t.Errorf("Expected average 3.5, got %v", stats.AverageRating)
	}

	// No rows: count zero, average must be nil, never zero
	empty, err := d.EventStats(ctx, "event-2")
	if err != nil {
		t.Fatalf("EventStats for empty event failed: %v", err)
	}
	if empty.FeedbackCount != 0 {
		t.Errorf("Expected count 0, got %d", empty.FeedbackCount)
	}
	if empty.AverageRating != nil {
		t.Errorf("Expected nil average, got %v", *empty.AverageRating)
	}
}

func TestFeedbackForEvent(t *testing.T) {
	d := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, d, "event-1", "React Summit")
	insertEvent(t, d, "event-2", "TypeScript Workshop")

	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	insertFeedback(t, d, "fb-1", "event-1", 4, base)
	insertFeedback(t, d, "fb-2", "event-2", 5, base.Add(time.Minute))
	insertFeedback(t, d, "fb-3", "event-1", 3, base.Add(2*time.Minute))

	items, err := d.FeedbackForEvent(ctx, "event-1")
	if err != nil {
		t.Fatalf("FeedbackForEvent failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].ID != "fb-3" || items[1].ID != "fb-1" {
		t.Errorf("Expected newest first, got %s, %s", items[0].ID, items[1].ID)
	}
}

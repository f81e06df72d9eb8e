package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-feedback/internal/models"
)

// The DDL is portable across the sqlite and postgres backends.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		date TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL REFERENCES events(id),
		author_name TEXT NOT NULL,
		content TEXT NOT NULL,
		rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_event_id ON feedback(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_rating ON feedback(rating)`,
}

// EnsureSchema creates the two tables if they are absent: events and
// feedback, with a foreign key from feedback.event_id and the rating
// range enforced at the store level.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

var sampleEvents = []models.Event{
	{
		Name:        "React Summit 2024",
		Description: "Annual conference covering the latest in React ecosystem",
		Date:        "2024-06-15",
	},
	{
		Name:        "TypeScript Workshop",
		Description: "Hands-on workshop for advanced TypeScript patterns",
		Date:        "2024-07-20",
	},
	{
		Name:        "GraphQL Webinar",
		Description: "Introduction to GraphQL and best practices",
		Date:        "2024-08-10",
	},
	{
		Name:        "Next.js Conference",
		Description: "Deep dive into Next.js features and deployment strategies",
		Date:        "2024-09-05",
	},
	{
		Name:        "DevOps Bootcamp",
		Description: "Intensive bootcamp on CI/CD and cloud infrastructure",
		Date:        "2024-10-12",
	},
}

// SeedEvents inserts the sample events once, only when the events table
// is still empty.
func SeedEvents(ctx context.Context, db *bun.DB) (int, error) {
	count, err := db.NewSelect().Model((*models.Event)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	events := make([]models.Event, len(sampleEvents))
	copy(events, sampleEvents)
	now := time.Now().UTC()
	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].CreatedAt = now
	}

	if _, err := db.NewInsert().Model(&events).Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to seed events: %w", err)
	}
	return len(events), nil
}

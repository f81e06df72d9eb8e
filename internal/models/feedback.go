package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Event is a thing people leave feedback against. The date is an opaque
// display string, the service never parses it.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	Date        string    `bun:"date,notnull" json:"date"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Feedback is append-only: created once, never updated or deleted.
type Feedback struct {
	bun.BaseModel `bun:"table:feedback"`

	ID         string    `bun:"id,pk" json:"id"`
	EventID    string    `bun:"event_id,notnull" json:"eventId"`
	AuthorName string    `bun:"author_name,notnull" json:"authorName"`
	Content    string    `bun:"content,notnull" json:"content"`
	Rating     int       `bun:"rating,notnull" json:"rating"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`

	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"-"`
}

// CreateFeedbackInput is the single write-path input.
type CreateFeedbackInput struct {
	EventID    string `json:"eventId"`
	AuthorName string `json:"authorName"`
	Content    string `json:"content"`
	Rating     int    `json:"rating"`
}

// FeedbackFilter narrows a feedback listing. Nil fields impose no
// constraint; set fields combine with AND.
type FeedbackFilter struct {
	EventID   *string
	MinRating *int
	MaxRating *int
}

// Pagination addresses a fixed-size page by 1-indexed page number.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Normalize replaces absent or out-of-range values with the defaults.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// PageInfo describes where a page sits inside the full filtered result set.
type PageInfo struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
}

// FeedbackConnection is one page of feedback plus the count of every row
// matching the filter regardless of pagination.
type FeedbackConnection struct {
	Items      []Feedback `json:"items"`
	TotalCount int        `json:"totalCount"`
	PageInfo   PageInfo   `json:"pageInfo"`
}

// EventStats are derived on read, never stored. AverageRating is nil when
// the event has no feedback rows.
type EventStats struct {
	FeedbackCount int      `json:"feedbackCount"`
	AverageRating *float64 `json:"averageRating"`
}

package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-feedback/internal/logger"
	"ms-feedback/internal/models"
)

type DBLayer interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListFeedback(ctx context.Context, filter *models.FeedbackFilter, limit, offset int) ([]models.Feedback, error)
	CountFeedback(ctx context.Context, filter *models.FeedbackFilter) (int, error)
	FeedbackForEvent(ctx context.Context, eventID string) ([]models.Feedback, error)
	EventStats(ctx context.Context, eventID string) (models.EventStats, error)
	InsertFeedback(ctx context.Context, fb *models.Feedback) error
}

// Publisher is the in-process fan-out fed on every successful create.
type Publisher interface {
	Publish(fb models.Feedback)
}

// KafkaPublisher streams created feedback to external consumers,
// best-effort.
type KafkaPublisher interface {
	PublishFeedbackCreated(fb models.Feedback) error
}

// StatsCache is an optional read-through cache for derived event stats.
type StatsCache interface {
	Get(ctx context.Context, eventID string) (*models.EventStats, error)
	Set(ctx context.Context, eventID string, stats models.EventStats) error
	Invalidate(ctx context.Context, eventID string) error
}

type Service struct {
	DB      DBLayer
	Emitter Publisher
	Kafka   KafkaPublisher // nil when disabled
	Cache   StatsCache     // nil when disabled
	Logger  *logger.Logger
}

func NewService(db DBLayer, emitter Publisher, kafka KafkaPublisher, cache StatsCache, log *logger.Logger) *Service {
	return &Service{DB: db, Emitter: emitter, Kafka: kafka, Cache: cache, Logger: log}
}

// ---------------- EVENTS ----------------

func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

// GetEvent returns nil for a missing id, never an error for absence.
func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

// EventFeedback returns every row for one event, newest first.
func (s *Service) EventFeedback(ctx context.Context, eventID string) ([]models.Feedback, error) {
	return s.DB.FeedbackForEvent(ctx, eventID)
}

// EventStats serves derived count/average, through the cache when one is
// configured. AverageRating stays nil for an event with no feedback.
func (s *Service) EventStats(ctx context.Context, eventID string) (models.EventStats, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.Get(ctx, eventID); err != nil {
			s.logWarn("CACHE", fmt.Sprintf("stats cache read failed for event %s: %v", eventID, err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	stats, err := s.DB.EventStats(ctx, eventID)
	if err != nil {
		return models.EventStats{}, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, eventID, stats); err != nil {
			s.logWarn("CACHE", fmt.Sprintf("stats cache write failed for event %s: %v", eventID, err))
		}
	}
	return stats, nil
}

// ---------------- FEEDBACK ----------------

func (s *Service) ListFeedback(ctx context.Context, filter *models.FeedbackFilter, pagination models.Pagination) (*models.FeedbackConnection, error) {
	p := pagination.Normalize()
	offset := (p.Page - 1) * p.PageSize

	items, err := s.DB.ListFeedback(ctx, filter, p.PageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	totalCount, err := s.DB.CountFeedback(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count feedback: %w", err)
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + p.PageSize - 1) / p.PageSize
	}

	return &models.FeedbackConnection{
		Items:      items,
		TotalCount: totalCount,
		PageInfo: models.PageInfo{
			HasNextPage:     p.Page*p.PageSize < totalCount,
			HasPreviousPage: totalCount > 0 && p.Page > 1,
			CurrentPage:     p.Page,
			TotalPages:      totalPages,
		},
	}, nil
}

// CreateFeedback is the single write path: validate, persist, then fan
// out. Nothing is published unless the row was persisted.
func (s *Service) CreateFeedback(ctx context.Context, input models.CreateFeedbackInput) (*models.Feedback, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, models.ErrRatingOutOfRange
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, models.ErrContentRequired
	}

	authorName := strings.TrimSpace(input.AuthorName)
	if authorName == "" {
		return nil, models.ErrAuthorRequired
	}

	event, err := s.DB.GetEventByID(ctx, input.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up event %s: %w", input.EventID, err)
	}
	if event == nil {
		return nil, models.ErrEventNotFound
	}

	fb := models.Feedback{
		ID:         uuid.NewString(),
		EventID:    input.EventID,
		AuthorName: authorName,
		Content:    content,
		Rating:     input.Rating,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.DB.InsertFeedback(ctx, &fb); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, fb.EventID); err != nil {
			s.logWarn("CACHE", fmt.Sprintf("stats cache invalidation failed for event %s: %v", fb.EventID, err))
		}
	}

	s.Emitter.Publish(fb)

	if s.Kafka != nil {
		if err := s.Kafka.PublishFeedbackCreated(fb); err != nil {
			s.logWarn("KAFKA", fmt.Sprintf("publish error (feedback created): %v", err))
		}
	}

	return &fb, nil
}

func (s *Service) logWarn(category, message string) {
	if s.Logger != nil {
		s.Logger.Warn(category, message)
	}
}

package graphql

import (
	"context"
	"time"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"ms-feedback/internal/feedback"
	"ms-feedback/internal/models"
	"ms-feedback/internal/sse"
)

// Resolver is the GraphQL root. Queries and mutations go through the
// feedback service; subscriptions are fed by the fan-out emitter.
type Resolver struct {
	Service *feedback.Service
	Emitter *sse.FeedbackEmitter
}

func NewResolver(service *feedback.Service, emitter *sse.FeedbackEmitter) *Resolver {
	return &Resolver{Service: service, Emitter: emitter}
}

// ---------------- QUERY ----------------

func (r *Resolver) Events(ctx context.Context) ([]*eventResolver, error) {
	events, err := r.Service.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	resolvers := make([]*eventResolver, len(events))
	for i := range events {
		resolvers[i] = &eventResolver{event: events[i], service: r.Service}
	}
	return resolvers, nil
}

// Event returns null for a missing id rather than an error.
func (r *Resolver) Event(ctx context.Context, args struct{ ID graphqlgo.ID }) (*eventResolver, error) {
	event, err := r.Service.GetEvent(ctx, string(args.ID))
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, nil
	}
	return &eventResolver{event: *event, service: r.Service}, nil
}

type feedbackFilterInput struct {
	EventID   *graphqlgo.ID
	MinRating *int32
	MaxRating *int32
}

type paginationInput struct {
	Page     int32
	PageSize int32
}

func (r *Resolver) Feedback(ctx context.Context, args struct {
	Filter     *feedbackFilterInput
	Pagination *paginationInput
}) (*feedbackConnectionResolver, error) {
	var filter *models.FeedbackFilter
	if args.Filter != nil {
		filter = &models.FeedbackFilter{}
		if args.Filter.EventID != nil {
			id := string(*args.Filter.EventID)
			filter.EventID = &id
		}
		if args.Filter.MinRating != nil {
			min := int(*args.Filter.MinRating)
			filter.MinRating = &min
		}
		if args.Filter.MaxRating != nil {
			max := int(*args.Filter.MaxRating)
			filter.MaxRating = &max
		}
	}

	pagination := models.Pagination{}
	if args.Pagination != nil {
		pagination.Page = int(args.Pagination.Page)
		pagination.PageSize = int(args.Pagination.PageSize)
	}

	conn, err := r.Service.ListFeedback(ctx, filter, pagination)
	if err != nil {
		return nil, err
	}
	return &feedbackConnectionResolver{conn: conn, service: r.Service}, nil
}

// ---------------- MUTATION ----------------

type createFeedbackInput struct {
	EventID    graphqlgo.ID
	AuthorName string
	Content    string
	Rating     int32
}

func (r *Resolver) CreateFeedback(ctx context.Context, args struct{ Input createFeedbackInput }) (*feedbackResolver, error) {
	fb, err := r.Service.CreateFeedback(ctx, models.CreateFeedbackInput{
		EventID:    string(args.Input.EventID),
		AuthorName: args.Input.AuthorName,
		Content:    args.Input.Content,
		Rating:     int(args.Input.Rating),
	})
	if err != nil {
		return nil, err
	}
	return &feedbackResolver{fb: *fb, service: r.Service}, nil
}

// ---------------- SUBSCRIPTION ----------------

func (r *Resolver) FeedbackAdded(ctx context.Context, args struct{ EventID *graphqlgo.ID }) (<-chan *feedbackResolver, error) {
	var eventID *string
	if args.EventID != nil {
		id := string(*args.EventID)
		eventID = &id
	}

	records := r.Emitter.Subscribe(ctx, eventID)
	out := make(chan *feedbackResolver)

	go func() {
		defer close(out)
		for fb := range records {
			select {
			case out <- &feedbackResolver{fb: fb, service: r.Service}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// ---------------- TYPE RESOLVERS ----------------

type eventResolver struct {
	event   models.Event
	service *feedback.Service
}

func (r *eventResolver) ID() graphqlgo.ID { return graphqlgo.ID(r.event.ID) }
func (r *eventResolver) Name() string     { return r.event.Name }
func (r *eventResolver) Date() string     { return r.event.Date }

func (r *eventResolver) Description() *string {
	if r.event.Description == "" {
		return nil
	}
	return &r.event.Description
}

func (r *eventResolver) CreatedAt() string {
	return r.event.CreatedAt.UTC().Format(time.RFC3339)
}

func (r *eventResolver) Feedback(ctx context.Context) ([]*feedbackResolver, error) {
	items, err := r.service.EventFeedback(ctx, r.event.ID)
	if err != nil {
		return nil, err
	}
	resolvers := make([]*feedbackResolver, len(items))
	for i := range items {
		resolvers[i] = &feedbackResolver{fb: items[i], service: r.service}
	}
	return resolvers, nil
}

func (r *eventResolver) FeedbackCount(ctx context.Context) (int32, error) {
	stats, err := r.service.EventStats(ctx, r.event.ID)
	if err != nil {
		return 0, err
	}
	return int32(stats.FeedbackCount), nil
}

func (r *eventResolver) AverageRating(ctx context.Context) (*float64, error) {
	stats, err := r.service.EventStats(ctx, r.event.ID)
	if err != nil {
		return nil, err
	}
	return stats.AverageRating, nil
}

type feedbackResolver struct {
	fb      models.Feedback
	service *feedback.Service
}

func (r *feedbackResolver) ID() graphqlgo.ID      { return graphqlgo.ID(r.fb.ID) }
func (r *feedbackResolver) EventID() graphqlgo.ID { return graphqlgo.ID(r.fb.EventID) }
func (r *feedbackResolver) AuthorName() string    { return r.fb.AuthorName }
func (r *feedbackResolver) Content() string       { return r.fb.Content }
func (r *feedbackResolver) Rating() int32         { return int32(r.fb.Rating) }

func (r *feedbackResolver) CreatedAt() string {
	return r.fb.CreatedAt.UTC().Format(time.RFC3339)
}

func (r *feedbackResolver) Event(ctx context.Context) (*eventResolver, error) {
	event, err := r.service.GetEvent(ctx, r.fb.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.ErrEventNotFound
	}
	return &eventResolver{event: *event, service: r.service}, nil
}

type feedbackConnectionResolver struct {
	conn    *models.FeedbackConnection
	service *feedback.Service
}

func (r *feedbackConnectionResolver) Items() []*feedbackResolver {
	resolvers := make([]*feedbackResolver, len(r.conn.Items))
	for i := range r.conn.Items {
		resolvers[i] = &feedbackResolver{fb: r.conn.Items[i], service: r.service}
	}
	return resolvers
}

func (r *feedbackConnectionResolver) TotalCount() int32 {
	return int32(r.conn.TotalCount)
}

func (r *feedbackConnectionResolver) PageInfo() *pageInfoResolver {
	return &pageInfoResolver{info: r.conn.PageInfo}
}

type pageInfoResolver struct {
	info models.PageInfo
}

func (r *pageInfoResolver) HasNextPage() bool     { return r.info.HasNextPage }
func (r *pageInfoResolver) HasPreviousPage() bool { return r.info.HasPreviousPage }
func (r *pageInfoResolver) CurrentPage() int32    { return int32(r.info.CurrentPage) }
func (r *pageInfoResolver) TotalPages() int32     { return int32(r.info.TotalPages) }

package rest

import (
	"context"
	"io"

	"github.com/ideanotion/glasstodo/internal/domain"
	"github.com/ideanotion/glasstodo/internal/service/ops"
)

// timelineServiceMock implements domain.TimelineService for handler tests.
// Unconfigured methods panic so unexpected store calls fail loudly.
type timelineServiceMock struct {
	ListTimelineFunc func(ctx context.Context, maxResults int) ([]domain.TimelineItem, error)
}

func (m *timelineServiceMock) ListTimeline(ctx context.Context, maxResults int) ([]domain.TimelineItem, error) {
	if m.ListTimelineFunc == nil {
		panic("unexpected ListTimeline call")
	}
	return m.ListTimelineFunc(ctx, maxResults)
}

func (m *timelineServiceMock) GetTimeline(ctx context.Context, id string) (*domain.TimelineItem, error) {
	panic("unexpected GetTimeline call")
}

func (m *timelineServiceMock) InsertTimeline(ctx context.Context, item *domain.TimelineItem) (*domain.TimelineItem, error) {
	panic("unexpected InsertTimeline call")
}

func (m *timelineServiceMock) InsertTimelineMedia(ctx context.Context, item *domain.TimelineItem, media io.Reader, contentType string) (*domain.TimelineItem, error) {
	panic("unexpected InsertTimelineMedia call")
}

func (m *timelineServiceMock) UpdateTimeline(ctx context.Context, item *domain.TimelineItem, id string) (*domain.TimelineItem, error) {
	panic("unexpected UpdateTimeline call")
}

func (m *timelineServiceMock) DeleteTimeline(ctx context.Context, id string) error {
	panic("unexpected DeleteTimeline call")
}

func (m *timelineServiceMock) InsertSubscription(ctx context.Context, sub *domain.Subscription) error {
	panic("unexpected InsertSubscription call")
}

func (m *timelineServiceMock) DeleteSubscription(ctx context.Context, id string) error {
	panic("unexpected DeleteSubscription call")
}

func (m *timelineServiceMock) InsertContact(ctx context.Context, contact *domain.Contact) error {
	panic("unexpected InsertContact call")
}

func (m *timelineServiceMock) DeleteContact(ctx context.Context, id string) error {
	panic("unexpected DeleteContact call")
}

type sessionSourceMock struct {
	ForTokenFunc func(ctx context.Context, userToken string) (domain.TimelineService, error)

	calls int
}

func (m *sessionSourceMock) ForToken(ctx context.Context, userToken string) (domain.TimelineService, error) {
	m.calls++
	if m.ForTokenFunc == nil {
		panic("unexpected ForToken call")
	}
	return m.ForTokenFunc(ctx, userToken)
}

type notifyRouterMock struct {
	HandleFunc func(ctx context.Context, tl domain.TimelineService, n domain.Notification) error

	calls int
}

func (m *notifyRouterMock) Handle(ctx context.Context, tl domain.TimelineService, n domain.Notification) error {
	m.calls++
	if m.HandleFunc == nil {
		panic("unexpected Handle call")
	}
	return m.HandleFunc(ctx, tl, n)
}

type opsServiceMock struct {
	ExecuteFunc func(ctx context.Context, tl domain.TimelineService, in ops.Input) (string, error)

	calls int
}

func (m *opsServiceMock) Execute(ctx context.Context, tl domain.TimelineService, in ops.Input) (string, error) {
	m.calls++
	if m.ExecuteFunc == nil {
		panic("unexpected Execute call")
	}
	return m.ExecuteFunc(ctx, tl, in)
}

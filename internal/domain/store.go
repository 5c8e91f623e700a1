package domain

import (
	"context"
	"io"
)

// TimelineService is the remote store contract consumed by the core.
// The store is the sole source of truth for timeline state; every call is a
// blocking network round-trip scoped to one authorized user session.
type TimelineService interface {
	ListTimeline(ctx context.Context, maxResults int) ([]TimelineItem, error)
	GetTimeline(ctx context.Context, id string) (*TimelineItem, error)
	InsertTimeline(ctx context.Context, item *TimelineItem) (*TimelineItem, error)
	InsertTimelineMedia(ctx context.Context, item *TimelineItem, media io.Reader, contentType string) (*TimelineItem, error)
	UpdateTimeline(ctx context.Context, item *TimelineItem, id string) (*TimelineItem, error)
	DeleteTimeline(ctx context.Context, id string) error

	InsertSubscription(ctx context.Context, sub *Subscription) error
	DeleteSubscription(ctx context.Context, id string) error

	InsertContact(ctx context.Context, contact *Contact) error
	DeleteContact(ctx context.Context, id string) error
}

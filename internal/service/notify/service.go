// Package notify routes inbound timeline notifications to the cover
// synchronizer. The router is stateless; every decision is made from the
// single notification payload.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ideanotion/glasstodo/internal/domain"
)

type resyncer interface {
	Resync(ctx context.Context, tl domain.TimelineService) error
}

// Service classifies one notification and triggers at most one cover resync.
type Service struct {
	cover resyncer
	log   *slog.Logger
}

// NewService creates a notification router.
func NewService(cover resyncer, logger *slog.Logger) *Service {
	return &Service{
		cover: cover,
		log:   logger.With("service", "notify"),
	}
}

// Handle processes one inbound notification against the user's timeline.
//
// Only the "timeline" collection drives any work; "locations" is a reserved
// extension point that is accepted and dropped, and unknown collections are
// ignored. Errors propagate to the caller, but the webhook transport always
// acknowledges delivery regardless.
func (s *Service) Handle(ctx context.Context, tl domain.TimelineService, n domain.Notification) error {
	switch n.Collection {
	case domain.CollectionLocations:
		// Accepted and dropped until location cards exist.
		s.log.DebugContext(ctx, "locations notification ignored",
			slog.String("item_id", n.ItemID),
		)
		return nil
	case domain.CollectionTimeline:
		return s.handleTimeline(ctx, tl, n)
	default:
		s.log.DebugContext(ctx, "unknown collection ignored",
			slog.String("collection", n.Collection),
		)
		return nil
	}
}

// handleTimeline scans the user actions. DELETE, REPLY, and SHARE all mark
// the cover stale; REPLY and SHARE additionally pull the affected item back
// into the bundle with the canonical menu before the single trailing resync.
// Item updates are deduplicated by item id within one notification.
func (s *Service) handleTimeline(ctx context.Context, tl domain.TimelineService, n domain.Notification) error {
	rebuild := false
	canonicalized := make(map[string]bool)

	for _, action := range n.UserActions {
		switch action.Type {
		case domain.ActionDelete:
			rebuild = true

		case domain.ActionReply, domain.ActionShare:
			rebuild = true

			if n.ItemID == "" {
				s.log.WarnContext(ctx, "notification carries no item id",
					slog.String("action", action.Type),
				)
				continue
			}
			if canonicalized[n.ItemID] {
				continue
			}
			if err := s.adoptItem(ctx, tl, n.ItemID); err != nil {
				return err
			}
			canonicalized[n.ItemID] = true

		default:
			// Unrecognized action types are not an error.
			s.log.DebugContext(ctx, "unrecognized action ignored",
				slog.String("action", action.Type),
			)
		}
	}

	if !rebuild {
		return nil
	}

	return s.cover.Resync(ctx, tl)
}

// adoptItem fetches the item and persists it with the bundle id and the
// canonical menu, so replies and shares created outside the bundle become
// regular to-do items.
func (s *Service) adoptItem(ctx context.Context, tl domain.TimelineService, itemID string) error {
	item, err := tl.GetTimeline(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get item %s: %w", itemID, err)
	}

	item.BundleID = domain.BundleID
	item.MenuItems = domain.ReplyMenu()

	if _, err := tl.UpdateTimeline(ctx, item, item.ID); err != nil {
		return fmt.Errorf("update item %s: %w", item.ID, err)
	}

	s.log.InfoContext(ctx, "item adopted into bundle", slog.String("item_id", item.ID))

	return nil
}

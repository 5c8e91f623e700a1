// Package ops dispatches the named maintenance operations of the to-do
// application: subscription management, card insertion, contact management,
// broadcasting, and timeline cleanup. Each operation returns a human-readable
// status message for the management surface.
package ops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ideanotion/glasstodo/internal/config"
	"github.com/ideanotion/glasstodo/internal/domain"
	"github.com/ideanotion/glasstodo/pkg/ctxutil"
)

// Supported operation names.
const (
	OpInsertSubscription   = "insertSubscription"
	OpDeleteSubscription   = "deleteSubscription"
	OpInsertCover          = "insertToDoListCover"
	OpInsertItem           = "insertItem"
	OpInsertItemWithAction = "insertItemWithAction"
	OpInsertItemAllUsers   = "insertItemAllUsers"
	OpInsertContact        = "insertContact"
	OpDeleteContact        = "deleteContact"
	OpDeleteTimelineItem   = "deleteTimelineItem"
	OpDeleteAll            = "deleteAll"
)

// broadcastCeiling caps insertItemAllUsers. Above this many stored
// credentials the broadcast is refused to protect the API quota.
const broadcastCeiling = 10

type credentialStore interface {
	List(ctx context.Context) ([]domain.StoredCredential, error)
	Count(ctx context.Context) (int, error)
}

type sessionSource interface {
	ForToken(ctx context.Context, userToken string) (domain.TimelineService, error)
}

type coverService interface {
	Provision(ctx context.Context, tl domain.TimelineService, asset io.Reader) error
	Resync(ctx context.Context, tl domain.TimelineService) error
}

// Input carries the parameters of one operation. Unused fields are ignored
// by operations that do not need them.
type Input struct {
	Operation      string
	Collection     string
	SubscriptionID string
	Message        string
	ItemID         string
	ContactID      string
	Image          io.Reader
	ImageType      string
}

// Service executes named operations against a user's timeline.
type Service struct {
	creds       credentialStore
	sessions    sessionSource
	cover       coverService
	cfg         config.CoverConfig
	callbackURL string
	log         *slog.Logger
}

func NewService(
	creds credentialStore,
	sessions sessionSource,
	cover coverService,
	cfg config.CoverConfig,
	callbackURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		creds:       creds,
		sessions:    sessions,
		cover:       cover,
		cfg:         cfg,
		callbackURL: callbackURL,
		log:         logger.With("service", "ops"),
	}
}

// Execute runs the operation named by in.Operation and returns its status
// message. An unknown operation name is not an error: it yields an
// "I don't know how to" status and performs no mutation.
func (s *Service) Execute(ctx context.Context, tl domain.TimelineService, in Input) (string, error) {
	switch in.Operation {
	case OpInsertSubscription:
		return s.insertSubscription(ctx, tl, in)
	case OpDeleteSubscription:
		return s.deleteSubscription(ctx, tl, in)
	case OpInsertCover:
		return s.insertCover(ctx, tl)
	case OpInsertItem:
		return s.insertItem(ctx, tl, in)
	case OpInsertItemWithAction:
		return s.insertItemWithAction(ctx, tl)
	case OpInsertItemAllUsers:
		return s.insertItemAllUsers(ctx)
	case OpInsertContact:
		return s.insertContact(ctx, tl)
	case OpDeleteContact:
		return s.deleteContact(ctx, tl, in)
	case OpDeleteTimelineItem:
		return s.deleteTimelineItem(ctx, tl, in)
	case OpDeleteAll:
		return s.deleteAll(ctx, tl)
	default:
		return fmt.Sprintf("I don't know how to %s", in.Operation), nil
	}
}

func (s *Service) insertSubscription(ctx context.Context, tl domain.TimelineService, in Input) (string, error) {
	collection := in.Collection
	if collection == "" {
		collection = domain.CollectionTimeline
	}
	userToken, _ := ctxutil.UserTokenFromCtx(ctx)

	sub := &domain.Subscription{
		Collection:  collection,
		UserToken:   userToken,
		CallbackURL: s.callbackURL,
	}
	if err := tl.InsertSubscription(ctx, sub); err != nil {
		return "", fmt.Errorf("insert subscription: %w", err)
	}

	return "Application is now subscribed to updates.", nil
}

func (s *Service) deleteSubscription(ctx context.Context, tl domain.TimelineService, in Input) (string, error) {
	if err := tl.DeleteSubscription(ctx, in.SubscriptionID); err != nil {
		return "", fmt.Errorf("delete subscription: %w", err)
	}
	return "Application has been unsubscribed.", nil
}

func (s *Service) insertCover(ctx context.Context, tl domain.TimelineService) (string, error) {
	asset := s.openCoverAsset(ctx)
	if asset != nil {
		defer asset.Close()
	}

	var reader io.Reader
	if asset != nil {
		reader = asset
	}
	if err := s.cover.Provision(ctx, tl, reader); err != nil {
		return "", fmt.Errorf("provision cover: %w", err)
	}

	return "Cover inserted.", nil
}

// openCoverAsset opens the configured cover image. A missing asset degrades
// to a cover without media rather than failing the operation.
func (s *Service) openCoverAsset(ctx context.Context) *os.File {
	if s.cfg.ImagePath == "" {
		return nil
	}
	f, err := os.Open(s.cfg.ImagePath)
	if err != nil {
		s.log.WarnContext(ctx, "cover asset unavailable",
			slog.String("path", s.cfg.ImagePath),
			slog.Any("error", err),
		)
		return nil
	}
	return f
}

func (s *Service) insertItem(ctx context.Context, tl domain.TimelineService, in Input) (string, error) {
	item := &domain.TimelineItem{
		Text:         in.Message,
		BundleID:     domain.BundleID,
		Notification: &domain.NotificationConfig{Level: domain.NotificationLevelDefault},
		MenuItems:    domain.ItemMenu(),
	}

	var err error
	if in.Image != nil {
		contentType := in.ImageType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		_, err = tl.InsertTimelineMedia(ctx, item, in.Image, contentType)
	} else {
		_, err = tl.InsertTimeline(ctx, item)
	}
	if err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}

	if err := s.cover.Resync(ctx, tl); err != nil {
		return "", fmt.Errorf("resync cover: %w", err)
	}

	return "To do item has been inserted.", nil
}

func (s *Service) insertItemWithAction(ctx context.Context, tl domain.TimelineService) (string, error) {
	item := &domain.TimelineItem{
		Creator:      &domain.Contact{},
		Text:         "Tell me what you had for lunch :)",
		Notification: &domain.NotificationConfig{Level: domain.NotificationLevelDefault},
		MenuItems:    []domain.MenuItem{{Action: domain.ActionReply}},
	}
	if _, err := tl.InsertTimeline(ctx, item); err != nil {
		return "", fmt.Errorf("insert item: %w", err)
	}

	if err := s.cover.Resync(ctx, tl); err != nil {
		return "", fmt.Errorf("resync cover: %w", err)
	}

	return "A timeline item with action has been inserted.", nil
}

// insertItemAllUsers sends a greeting card to every stored user, unless the
// user count exceeds the broadcast ceiling.
func (s *Service) insertItemAllUsers(ctx context.Context) (string, error) {
	userCount, err := s.creds.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("count users: %w", err)
	}
	if userCount > broadcastCeiling {
		return fmt.Sprintf("Total user count is %d. Aborting broadcast to save your quota", userCount), nil
	}

	creds, err := s.creds.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}

	for _, cred := range creds {
		userTL, err := s.sessions.ForToken(ctx, cred.UserToken)
		if err != nil {
			return "", fmt.Errorf("session for %s: %w", cred.UserToken, err)
		}

		item := &domain.TimelineItem{
			Text:         "Hello Everyone!",
			Notification: &domain.NotificationConfig{Level: domain.NotificationLevelDefault},
		}
		if _, err := userTL.InsertTimeline(ctx, item); err != nil {
			return "", fmt.Errorf("broadcast to %s: %w", cred.UserToken, err)
		}
	}

	return fmt.Sprintf("Successfully sent cards to %d users.", userCount), nil
}

func (s *Service) insertContact(ctx context.Context, tl domain.TimelineService) (string, error) {
	contact := &domain.Contact{
		ID:          domain.BundleID,
		DisplayName: s.cfg.Title,
		ImageURLs:   []string{s.cfg.ImageURL},
	}
	if err := tl.InsertContact(ctx, contact); err != nil {
		return "", fmt.Errorf("insert contact: %w", err)
	}
	return "Inserted contact.", nil
}

func (s *Service) deleteContact(ctx context.Context, tl domain.TimelineService, in Input) (string, error) {
	if err := tl.DeleteContact(ctx, in.ContactID); err != nil {
		return "", fmt.Errorf("delete contact: %w", err)
	}
	return "Contact has been deleted.", nil
}

func (s *Service) deleteTimelineItem(ctx context.Context, tl domain.TimelineService, in Input) (string, error) {
	if err := tl.DeleteTimeline(ctx, in.ItemID); err != nil {
		return "", fmt.Errorf("delete item: %w", err)
	}

	// Deleting the cover itself leaves nothing to resync.
	if err := s.cover.Resync(ctx, tl); err != nil {
		if errors.Is(err, domain.ErrNoCover) {
			s.log.WarnContext(ctx, "cover gone after delete, skipping resync")
			return "A timeline item has been deleted.", nil
		}
		return "", fmt.Errorf("resync cover: %w", err)
	}

	return "A timeline item has been deleted.", nil
}

func (s *Service) deleteAll(ctx context.Context, tl domain.TimelineService) (string, error) {
	items, err := tl.ListTimeline(ctx, domain.TimelinePageSize)
	if err != nil {
		return "", fmt.Errorf("list timeline: %w", err)
	}

	for _, item := range items {
		if err := tl.DeleteTimeline(ctx, item.ID); err != nil {
			return "", fmt.Errorf("delete item %s: %w", item.ID, err)
		}
	}

	return "All data removed...", nil
}

// Package cover keeps the single bundle-cover card consistent with the set
// of outstanding to-do items on a user's timeline.
package cover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/ideanotion/glasstodo/internal/config"
	"github.com/ideanotion/glasstodo/internal/domain"
	"github.com/ideanotion/glasstodo/pkg/ctxutil"
)

// cardTemplate is the cover card markup. Placeholders: image URL, rendered
// line items, footer title. The remote service renders this HTML verbatim,
// so no escaping layer sits in between.
const cardTemplate = "<article class=\"photo\">\n" +
	"  <img src=\"%s\" width=\"100%%\" height=\"100%%\">\n" +
	"  <div class=\"overlay-gradient-tall-dark\"/>\n" +
	"  <section style=\"top:0px\">\n" +
	"   <ul class=\"text-auto-size\">\n" +
	"%s</ul>\n" +
	"  </section>\n" +
	"  <footer>\n" +
	"    <p>%s</p>\n" +
	"  </footer>\n" +
	"</article>\n"

const lineItemTemplate = "<li>%s</li>\n"

// Service is the cover synchronizer. Concurrent resyncs for the same user
// are collapsed into one flight to avoid the list/update lost-update race.
type Service struct {
	cfg         config.CoverConfig
	callbackURL string
	log         *slog.Logger
	group       singleflight.Group
}

// NewService creates a cover synchronizer. callbackURL is where the timeline
// service delivers push notifications; when empty, provisioning skips the
// subscription side effect.
func NewService(cfg config.CoverConfig, callbackURL string, logger *slog.Logger) *Service {
	return &Service{
		cfg:         cfg,
		callbackURL: callbackURL,
		log:         logger.With("service", "cover"),
	}
}

// Render produces the cover card body for the given non-cover items, in the
// order given. Deterministic: same items in, same markup out.
func (s *Service) Render(items []domain.TimelineItem) string {
	var lines strings.Builder
	for _, item := range items {
		fmt.Fprintf(&lines, lineItemTemplate, item.Text)
	}
	return fmt.Sprintf(cardTemplate, s.cfg.ImageURL, lines.String(), s.cfg.Title)
}

// Resync recomputes and persists the cover card body from the current
// timeline state. Exactly one remote update is issued regardless of how many
// items exist. Returns domain.ErrNoCover when no cover has been provisioned.
//
// Calls for the same user token are serialized through a singleflight group:
// a resync arriving while another is in flight shares its result instead of
// racing it.
func (s *Service) Resync(ctx context.Context, tl domain.TimelineService) error {
	key, _ := ctxutil.UserTokenFromCtx(ctx)
	_, err, _ := s.group.Do(key, func() (any, error) {
		return nil, s.resync(ctx, tl)
	})
	return err
}

func (s *Service) resync(ctx context.Context, tl domain.TimelineService) error {
	items, err := tl.ListTimeline(ctx, domain.TimelinePageSize)
	if err != nil {
		return fmt.Errorf("list timeline: %w", err)
	}

	var coverItem *domain.TimelineItem
	others := make([]domain.TimelineItem, 0, len(items))
	for i := range items {
		if items[i].IsCover() {
			if coverItem == nil {
				coverItem = &items[i]
			}
			continue
		}
		others = append(others, items[i])
	}

	if coverItem == nil {
		return fmt.Errorf("resync: %w", domain.ErrNoCover)
	}

	coverItem.HTML = s.Render(others)

	if _, err := tl.UpdateTimeline(ctx, coverItem, coverItem.ID); err != nil {
		return fmt.Errorf("update cover %s: %w", coverItem.ID, err)
	}

	s.log.InfoContext(ctx, "cover resynced",
		slog.String("cover_id", coverItem.ID),
		slog.Int("items", len(others)),
	)

	return nil
}

// Provision creates the initial cover card with its image asset, registers
// the timeline push subscription, and inserts the sharing contact. Guards
// the at-most-one-cover invariant: returns domain.ErrAlreadyExists when a
// cover-flagged item is already present.
func (s *Service) Provision(ctx context.Context, tl domain.TimelineService, asset io.Reader) error {
	items, err := tl.ListTimeline(ctx, domain.TimelinePageSize)
	if err != nil {
		return fmt.Errorf("list timeline: %w", err)
	}
	for i := range items {
		if items[i].IsCover() {
			return fmt.Errorf("provision cover: %w", domain.ErrAlreadyExists)
		}
	}

	isCover := true
	coverItem := &domain.TimelineItem{
		Title:         s.cfg.Title,
		HTML:          s.Render(nil),
		BundleID:      domain.BundleID,
		IsBundleCover: &isCover,
		MenuItems:     domain.CoverMenu(),
		Notification:  &domain.NotificationConfig{Level: domain.NotificationLevelDefault},
	}

	if asset != nil {
		_, err = tl.InsertTimelineMedia(ctx, coverItem, asset, "image/jpeg")
	} else {
		_, err = tl.InsertTimeline(ctx, coverItem)
	}
	if err != nil {
		return fmt.Errorf("insert cover: %w", err)
	}

	userToken, hasUser := ctxutil.UserTokenFromCtx(ctx)
	if s.callbackURL != "" && hasUser {
		sub := &domain.Subscription{
			Collection:  domain.CollectionTimeline,
			UserToken:   userToken,
			CallbackURL: s.callbackURL,
		}
		if err := tl.InsertSubscription(ctx, sub); err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
	} else {
		s.log.WarnContext(ctx, "skipping subscription", slog.Bool("has_user", hasUser))
	}

	contact := &domain.Contact{
		ID:          domain.BundleID,
		DisplayName: s.cfg.Title,
		ImageURLs:   []string{s.cfg.ImageURL},
	}
	if err := tl.InsertContact(ctx, contact); err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}

	s.log.InfoContext(ctx, "cover provisioned", slog.String("title", s.cfg.Title))

	return s.resync(ctx, tl)
}

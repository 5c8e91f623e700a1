package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ideanotion/glasstodo/internal/domain"
	"github.com/ideanotion/glasstodo/pkg/ctxutil"
)

type sessionSource interface {
	ForToken(ctx context.Context, userToken string) (domain.TimelineService, error)
}

type notifyRouter interface {
	Handle(ctx context.Context, tl domain.TimelineService, n domain.Notification) error
}

// NotifyHandler receives push notifications from the timeline service.
type NotifyHandler struct {
	sessions sessionSource
	router   notifyRouter
	log      *slog.Logger
}

// NewNotifyHandler creates a NotifyHandler.
func NewNotifyHandler(sessions sessionSource, router notifyRouter, logger *slog.Logger) *NotifyHandler {
	return &NotifyHandler{
		sessions: sessions,
		router:   router,
		log:      logger.With("handler", "notify"),
	}
}

type notifyRequest struct {
	Collection  string `json:"collection"`
	ItemID      string `json:"itemId"`
	Operation   string `json:"operation"`
	UserToken   string `json:"userToken"`
	VerifyToken string `json:"verifyToken"`
	UserActions []struct {
		Type    string `json:"type"`
		Payload string `json:"payload"`
	} `json:"userActions"`
}

// Notify handles POST /notify. The sender retries undelivered pings, so the
// response is always 200 with an empty body; failures are only logged.
func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.WarnContext(r.Context(), "malformed notification payload",
			slog.String("error", err.Error()),
		)
		return
	}

	n := domain.Notification{
		Collection:  req.Collection,
		ItemID:      req.ItemID,
		Operation:   req.Operation,
		UserToken:   req.UserToken,
		VerifyToken: req.VerifyToken,
	}
	for _, a := range req.UserActions {
		n.UserActions = append(n.UserActions, domain.UserAction{
			Type:  a.Type,
			Value: a.Payload,
		})
	}

	tl, err := h.sessions.ForToken(r.Context(), n.UserToken)
	if err != nil {
		h.log.WarnContext(r.Context(), "no session for notification",
			slog.String("user_token", n.UserToken),
			slog.String("error", err.Error()),
		)
		return
	}

	ctx := ctxutil.WithUserToken(r.Context(), n.UserToken)
	if err := h.router.Handle(ctx, tl, n); err != nil {
		h.log.ErrorContext(ctx, "notification handling failed",
			slog.String("item_id", n.ItemID),
			slog.String("error", err.Error()),
		)
	}
}

package rest

import (
	"log/slog"
	"net/http"

	"github.com/ideanotion/glasstodo/internal/domain"
	"github.com/ideanotion/glasstodo/pkg/ctxutil"
)

// TimelineHandler serves the to-do list overview.
type TimelineHandler struct {
	sessions sessionSource
	log      *slog.Logger
}

// NewTimelineHandler creates a TimelineHandler.
func NewTimelineHandler(sessions sessionSource, logger *slog.Logger) *TimelineHandler {
	return &TimelineHandler{
		sessions: sessions,
		log:      logger.With("handler", "timeline"),
	}
}

type timelineResponse struct {
	HasCover bool                  `json:"hasCover"`
	Cover    *domain.TimelineItem  `json:"cover,omitempty"`
	Items    []domain.TimelineItem `json:"items"`
	Message  string                `json:"message,omitempty"`
}

// Index handles GET /timeline. The listing is split into the bundle cover
// and the outstanding to-do items.
func (h *TimelineHandler) Index(w http.ResponseWriter, r *http.Request) {
	userToken, ok := ctxutil.UserTokenFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tl, err := h.sessions.ForToken(r.Context(), userToken)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items, err := tl.ListTimeline(r.Context(), domain.TimelinePageSize)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	resp := timelineResponse{Items: []domain.TimelineItem{}}
	for i := range items {
		if items[i].IsCover() && resp.Cover == nil {
			resp.HasCover = true
			resp.Cover = &items[i]
			continue
		}
		resp.Items = append(resp.Items, items[i])
	}
	if !resp.HasCover {
		resp.Message = "Let's add a To Do List timeline cover first!"
	}

	writeJSON(w, http.StatusOK, resp)
}

package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ideanotion/glasstodo/internal/domain"
	"github.com/ideanotion/glasstodo/internal/service/ops"
	"github.com/ideanotion/glasstodo/pkg/ctxutil"
)

// maxUploadBytes bounds the multipart form parse for item image uploads.
const maxUploadBytes = 8 << 20

type opsService interface {
	Execute(ctx context.Context, tl domain.TimelineService, in ops.Input) (string, error)
}

// OperationsHandler serves the management operation endpoint.
type OperationsHandler struct {
	svc      opsService
	sessions sessionSource
	log      *slog.Logger
}

// NewOperationsHandler creates an OperationsHandler.
func NewOperationsHandler(svc opsService, sessions sessionSource, logger *slog.Logger) *OperationsHandler {
	return &OperationsHandler{
		svc:      svc,
		sessions: sessions,
		log:      logger.With("handler", "operations"),
	}
}

type operationResponse struct {
	Message string `json:"message"`
}

// Execute handles POST /operations. The body is a form (urlencoded or
// multipart when an image is attached) naming the operation and its
// parameters; the response carries the operation's status message.
func (h *OperationsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userToken, ok := ctxutil.UserTokenFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	in, err := parseOperationInput(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	tl, err := h.sessions.ForToken(r.Context(), userToken)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	status, err := h.svc.Execute(r.Context(), tl, in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, operationResponse{Message: status})
}

func parseOperationInput(r *http.Request) (ops.Input, error) {
	multipart := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")

	if multipart {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return ops.Input{}, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return ops.Input{}, err
		}
	}

	in := ops.Input{
		Operation:      r.FormValue("operation"),
		Collection:     r.FormValue("collection"),
		SubscriptionID: r.FormValue("subscriptionId"),
		Message:        r.FormValue("message"),
		ItemID:         r.FormValue("itemId"),
		ContactID:      r.FormValue("id"),
	}

	if multipart {
		file, header, err := r.FormFile("imagefile")
		if err == nil && header.Size > 0 {
			in.Image = file
			in.ImageType = header.Header.Get("Content-Type")
		}
	}

	return in, nil
}

func (h *OperationsHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	handleError(h.log, w, r, err)
}

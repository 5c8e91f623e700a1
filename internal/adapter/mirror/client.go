// Package mirror implements the remote timeline service client.
// One Client is scoped to a single authorized user session; the HTTP client
// it wraps is expected to carry that user's OAuth credentials.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"github.com/ideanotion/glasstodo/internal/domain"
)

// Client calls the Mirror-style timeline REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Client for the given base URL. The httpClient should be
// an OAuth-authorized client; when nil, a plain client with a default timeout
// is used (tests).
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		log:        logger.With("adapter", "mirror"),
	}
}

// listResponse wraps a timeline listing.
type listResponse struct {
	Items []domain.TimelineItem `json:"items"`
}

// ListTimeline returns up to maxResults timeline items in store order.
func (c *Client) ListTimeline(ctx context.Context, maxResults int) ([]domain.TimelineItem, error) {
	reqURL := c.baseURL + "/timeline?maxResults=" + strconv.Itoa(maxResults)

	var out listResponse
	if err := c.do(ctx, http.MethodGet, reqURL, nil, "", &out); err != nil {
		return nil, fmt.Errorf("mirror: list timeline: %w", err)
	}

	c.log.DebugContext(ctx, "timeline listed", slog.Int("items", len(out.Items)))

	return out.Items, nil
}

// GetTimeline fetches a single timeline item by id.
func (c *Client) GetTimeline(ctx context.Context, id string) (*domain.TimelineItem, error) {
	var out domain.TimelineItem
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, "", &out); err != nil {
		return nil, fmt.Errorf("mirror: get timeline item: %w", err)
	}
	return &out, nil
}

// InsertTimeline creates a new timeline item and returns it with the
// store-assigned id.
func (c *Client) InsertTimeline(ctx context.Context, item *domain.TimelineItem) (*domain.TimelineItem, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("mirror: encode timeline item: %w", err)
	}

	var out domain.TimelineItem
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/timeline", bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, fmt.Errorf("mirror: insert timeline item: %w", err)
	}

	c.log.DebugContext(ctx, "timeline item inserted", slog.String("item_id", out.ID))

	return &out, nil
}

// InsertTimelineMedia creates a new timeline item with an attached media
// stream using a multipart/related upload.
func (c *Client) InsertTimelineMedia(ctx context.Context, item *domain.TimelineItem, media io.Reader, contentType string) (*domain.TimelineItem, error) {
	meta, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("mirror: encode timeline item: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {"application/json"}})
	if err != nil {
		return nil, fmt.Errorf("mirror: create metadata part: %w", err)
	}
	if _, err := metaPart.Write(meta); err != nil {
		return nil, fmt.Errorf("mirror: write metadata part: %w", err)
	}

	mediaPart, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {contentType}})
	if err != nil {
		return nil, fmt.Errorf("mirror: create media part: %w", err)
	}
	if _, err := io.Copy(mediaPart, media); err != nil {
		return nil, fmt.Errorf("mirror: write media part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mirror: close multipart body: %w", err)
	}

	reqURL := c.baseURL + "/timeline?uploadType=multipart"
	related := "multipart/related; boundary=" + mw.Boundary()

	var out domain.TimelineItem
	if err := c.do(ctx, http.MethodPost, reqURL, &buf, related, &out); err != nil {
		return nil, fmt.Errorf("mirror: insert timeline item with media: %w", err)
	}

	c.log.DebugContext(ctx, "timeline item with media inserted", slog.String("item_id", out.ID))

	return &out, nil
}

// UpdateTimeline replaces the timeline item with the given id.
func (c *Client) UpdateTimeline(ctx context.Context, item *domain.TimelineItem, id string) (*domain.TimelineItem, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("mirror: encode timeline item: %w", err)
	}

	var out domain.TimelineItem
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), bytes.NewReader(body), "application/json", &out); err != nil {
		return nil, fmt.Errorf("mirror: update timeline item: %w", err)
	}

	return &out, nil
}

// DeleteTimeline removes a timeline item by id.
func (c *Client) DeleteTimeline(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil, "", nil); err != nil {
		return fmt.Errorf("mirror: delete timeline item: %w", err)
	}
	return nil
}

// InsertSubscription registers a push callback for a collection.
func (c *Client) InsertSubscription(ctx context.Context, sub *domain.Subscription) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("mirror: encode subscription: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/subscriptions", bytes.NewReader(body), "application/json", nil); err != nil {
		return fmt.Errorf("mirror: insert subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes a subscription by id.
func (c *Client) DeleteSubscription(ctx context.Context, id string) error {
	reqURL := c.baseURL + "/subscriptions/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, reqURL, nil, "", nil); err != nil {
		return fmt.Errorf("mirror: delete subscription: %w", err)
	}
	return nil
}

// InsertContact registers a sharing contact.
func (c *Client) InsertContact(ctx context.Context, contact *domain.Contact) error {
	body, err := json.Marshal(contact)
	if err != nil {
		return fmt.Errorf("mirror: encode contact: %w", err)
	}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/contacts", bytes.NewReader(body), "application/json", nil); err != nil {
		return fmt.Errorf("mirror: insert contact: %w", err)
	}
	return nil
}

// DeleteContact removes a sharing contact by id.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	reqURL := c.baseURL + "/contacts/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, reqURL, nil, "", nil); err != nil {
		return fmt.Errorf("mirror: delete contact: %w", err)
	}
	return nil
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + "/timeline/" + url.PathEscape(id)
}

// do executes one request and decodes a JSON response into out (skipped when
// out is nil). No retries: transient failures propagate to the caller.
func (c *Client) do(ctx context.Context, method, reqURL string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "mirror request failed",
			slog.String("method", method),
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// mapStatus converts an HTTP status to a domain error. 2xx is success.
func mapStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.ErrUnauthorized
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return fmt.Errorf("unexpected status %d", status)
	}
}

package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ideanotion/glasstodo/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool { return &b }

func TestClient_ListTimeline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/timeline" {
			t.Errorf("path = %q, want /timeline", r.URL.Path)
		}
		if got := r.URL.Query().Get("maxResults"); got != "100" {
			t.Errorf("maxResults = %q, want 100", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"items":[
			{"id":"c1","isBundleCover":true,"html":"<article/>"},
			{"id":"a","text":"Buy milk"},
			{"id":"b","text":"Walk dog"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	items, err := c.ListTimeline(context.Background(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	if !items[0].IsCover() {
		t.Error("items[0] should be the cover")
	}
	if items[1].ID != "a" || items[2].ID != "b" {
		t.Errorf("order = [%q, %q], want store order [a, b]", items[1].ID, items[2].ID)
	}
}

func TestClient_GetTimeline_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	_, err := c.GetTimeline(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestClient_ListTimeline_Unauthorized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	_, err := c.ListTimeline(context.Background(), 100)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("error = %v, want ErrUnauthorized", err)
	}
}

func TestClient_InsertTimeline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		var item domain.TimelineItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if item.Text != "Buy milk" {
			t.Errorf("text = %q, want %q", item.Text, "Buy milk")
		}
		if item.BundleID != domain.BundleID {
			t.Errorf("bundleId = %q, want %q", item.BundleID, domain.BundleID)
		}
		item.ID = "new-1"
		json.NewEncoder(w).Encode(item)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	out, err := c.InsertTimeline(context.Background(), &domain.TimelineItem{
		Text:     "Buy milk",
		BundleID: domain.BundleID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != "new-1" {
		t.Errorf("id = %q, want new-1", out.ID)
	}
}

func TestClient_InsertTimelineMedia(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("uploadType"); got != "multipart" {
			t.Errorf("uploadType = %q, want multipart", got)
		}

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			t.Fatalf("parse content type: %v", err)
		}
		if mediaType != "multipart/related" {
			t.Errorf("media type = %q, want multipart/related", mediaType)
		}

		mr := multipart.NewReader(r.Body, params["boundary"])

		metaPart, err := mr.NextPart()
		if err != nil {
			t.Fatalf("read metadata part: %v", err)
		}
		var item domain.TimelineItem
		if err := json.NewDecoder(metaPart).Decode(&item); err != nil {
			t.Fatalf("decode metadata: %v", err)
		}
		if !item.IsCover() {
			t.Error("metadata should carry the cover flag")
		}

		mediaPart, err := mr.NextPart()
		if err != nil {
			t.Fatalf("read media part: %v", err)
		}
		if ct := mediaPart.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("media content type = %q, want image/jpeg", ct)
		}
		media, _ := io.ReadAll(mediaPart)
		if string(media) != "jpeg-bytes" {
			t.Errorf("media = %q, want jpeg-bytes", media)
		}

		item.ID = "cover-1"
		json.NewEncoder(w).Encode(item)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	out, err := c.InsertTimelineMedia(context.Background(),
		&domain.TimelineItem{IsBundleCover: boolPtr(true)},
		strings.NewReader("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != "cover-1" {
		t.Errorf("id = %q, want cover-1", out.ID)
	}
}

func TestClient_UpdateTimeline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		if r.URL.Path != "/timeline/c1" {
			t.Errorf("path = %q, want /timeline/c1", r.URL.Path)
		}
		io.Copy(io.Discard, r.Body)
		io.WriteString(w, `{"id":"c1"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	out, err := c.UpdateTimeline(context.Background(), &domain.TimelineItem{ID: "c1"}, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != "c1" {
		t.Errorf("id = %q, want c1", out.ID)
	}
}

func TestClient_DeleteTimeline(t *testing.T) {
	t.Parallel()

	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	if err := c.DeleteTimeline(context.Background(), "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "/timeline/a" {
		t.Errorf("deleted path = %q, want /timeline/a", deleted)
	}
}

func TestClient_Subscriptions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/subscriptions":
			var sub domain.Subscription
			if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
				t.Fatalf("decode subscription: %v", err)
			}
			if sub.Collection != domain.CollectionTimeline {
				t.Errorf("collection = %q, want timeline", sub.Collection)
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete && r.URL.Path == "/subscriptions/sub-1":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	err := c.InsertSubscription(context.Background(), &domain.Subscription{
		Collection:  domain.CollectionTimeline,
		UserToken:   "user-1",
		CallbackURL: "https://example.com/notify",
	})
	if err != nil {
		t.Fatalf("insert subscription: %v", err)
	}
	if err := c.DeleteSubscription(context.Background(), "sub-1"); err != nil {
		t.Fatalf("delete subscription: %v", err)
	}
}

func TestClient_Contacts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/contacts":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete && r.URL.Path == "/contacts/ToDoList":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, newTestLogger())
	err := c.InsertContact(context.Background(), &domain.Contact{
		ID:          domain.BundleID,
		DisplayName: "To Do List",
	})
	if err != nil {
		t.Fatalf("insert contact: %v", err)
	}
	if err := c.DeleteContact(context.Background(), domain.BundleID); err != nil {
		t.Fatalf("delete contact: %v", err)
	}
}

func TestMapStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   error
	}{
		{status: 200, want: nil},
		{status: 204, want: nil},
		{status: 401, want: domain.ErrUnauthorized},
		{status: 403, want: domain.ErrUnauthorized},
		{status: 404, want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		got := mapStatus(tt.status)
		if tt.want == nil {
			if got != nil {
				t.Errorf("mapStatus(%d) = %v, want nil", tt.status, got)
			}
			continue
		}
		if !errors.Is(got, tt.want) {
			t.Errorf("mapStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}

	if got := mapStatus(500); got == nil {
		t.Error("mapStatus(500) = nil, want error")
	}
}

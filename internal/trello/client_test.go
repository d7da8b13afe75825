package trello

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Token: "t"}); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := New(Config{APIKey: "k"}); err == nil {
		t.Error("expected error for missing token")
	}

	client, err := New(Config{APIKey: "k", Token: "t"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want default", client.baseURL)
	}
	if client.retry.MaxAttempts != 3 {
		t.Errorf("retry.MaxAttempts = %d, want default 3", client.retry.MaxAttempts)
	}
}

func TestClient_AuthParamsAppended(t *testing.T) {
	var gotKey, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotToken = r.URL.Query().Get("token")
		_, _ = w.Write([]byte(`{"id":"b1","name":"Roadmap"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, DefaultRetryConfig())

	if _, err := client.GetBoard(context.Background(), "b1"); err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("key param = %q, want test-key", gotKey)
	}
	if gotToken != "test-token" {
		t.Errorf("token param = %q, want test-token", gotToken)
	}
}

func TestClient_GetListCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1/lists/l1/cards" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"c1","name":"First","idList":"l1"},{"id":"c2","name":"Second","idList":"l1"}]`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, DefaultRetryConfig())

	cards, err := client.GetListCards(context.Background(), "l1")
	if err != nil {
		t.Fatalf("GetListCards() error = %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2", len(cards))
	}
	if cards[0].ID != "c1" || cards[1].ID != "c2" {
		t.Errorf("unexpected card ids: %s, %s", cards[0].ID, cards[1].ID)
	}
}

func TestClient_CreateCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		q := r.URL.Query()
		if q.Get("idList") != "l1" || q.Get("name") != "New card" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("idLabels") != "lab1,lab2" {
			t.Errorf("idLabels = %q, want lab1,lab2", q.Get("idLabels"))
		}
		_ = json.NewEncoder(w).Encode(Card{ID: "c9", Name: "New card", IDList: "l1"})
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, DefaultRetryConfig())

	card, err := client.CreateCard(context.Background(), CardInput{
		Name:     "New card",
		IDList:   "l1",
		IDLabels: []string{"lab1", "lab2"},
	})
	if err != nil {
		t.Fatalf("CreateCard() error = %v", err)
	}
	if card.ID != "c9" {
		t.Errorf("ID = %q, want c9", card.ID)
	}
}

func TestClient_CreateCard_Validation(t *testing.T) {
	client, _ := New(Config{APIKey: "k", Token: "t"})

	if _, err := client.CreateCard(context.Background(), CardInput{Name: "x"}); err == nil {
		t.Error("expected error for missing idList")
	}
	if _, err := client.CreateCard(context.Background(), CardInput{IDList: "l1"}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestClient_UpdateCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		q := r.URL.Query()
		if q.Get("name") != "Renamed" {
			t.Errorf("name = %q, want Renamed", q.Get("name"))
		}
		if q.Has("desc") || q.Has("idList") {
			t.Errorf("nil fields must not be sent: %v", q)
		}
		_ = json.NewEncoder(w).Encode(Card{ID: "c1", Name: "Renamed"})
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, DefaultRetryConfig())

	name := "Renamed"
	card, err := client.UpdateCard(context.Background(), "c1", CardUpdate{Name: &name})
	if err != nil {
		t.Fatalf("UpdateCard() error = %v", err)
	}
	if card.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", card.Name)
	}
}

func TestClient_UpdateCard_NoFields(t *testing.T) {
	client, _ := New(Config{APIKey: "k", Token: "t"})
	if _, err := client.UpdateCard(context.Background(), "c1", CardUpdate{}); err == nil {
		t.Error("expected error for empty update")
	}
}

func TestClient_MoveAndArchive(t *testing.T) {
	var lastQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(Card{ID: "c1"})
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, DefaultRetryConfig())

	if _, err := client.MoveCard(context.Background(), "c1", "l2"); err != nil {
		t.Fatalf("MoveCard() error = %v", err)
	}
	if got := lastQuery["idList"]; len(got) != 1 || got[0] != "l2" {
		t.Errorf("idList = %v, want [l2]", got)
	}

	if _, err := client.ArchiveCard(context.Background(), "c1"); err != nil {
		t.Fatalf("ArchiveCard() error = %v", err)
	}
	if got := lastQuery["closed"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("closed = %v, want [true]", got)
	}
}

func TestClient_DeleteCard(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, DefaultRetryConfig())

	if err := client.DeleteCard(context.Background(), "c1"); err != nil {
		t.Fatalf("DeleteCard() error = %v", err)
	}
	if method != http.MethodDelete || path != "/1/cards/c1" {
		t.Errorf("got %s %s, want DELETE /1/cards/c1", method, path)
	}
}

func TestClient_DueDateParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"c1","name":"Due soon","idList":"l1","due":"2026-09-01T12:00:00.000Z","dateLastActivity":"2026-08-20T08:30:00.000Z"}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, DefaultRetryConfig())

	card, err := client.GetCard(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCard() error = %v", err)
	}
	if card.Due == nil {
		t.Fatal("Due should be parsed")
	}
	if card.Due.UTC() != time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) {
		t.Errorf("Due = %v", card.Due)
	}
	if card.DateLastActivity == nil {
		t.Fatal("DateLastActivity should be parsed")
	}
}

func TestClient_Recorder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	client, err := New(Config{
		APIKey:   "k",
		Token:    "t",
		BaseURL:  srv.URL,
		Retry:    RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Recorder: rec,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	client.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	_, _ = client.GetBoard(context.Background(), "b1")

	if rec.retries != 1 {
		t.Errorf("retries recorded = %d, want 1", rec.retries)
	}
	if rec.exhausted != 1 {
		t.Errorf("exhaustions recorded = %d, want 1", rec.exhausted)
	}
	if rec.requests != 1 {
		t.Errorf("requests recorded = %d, want 1", rec.requests)
	}
}

type fakeRecorder struct {
	requests  int
	retries   int
	exhausted int
}

func (f *fakeRecorder) RecordAPIRequest(ctx context.Context, operation, status string, attempts int, duration time.Duration) {
	f.requests++
}

func (f *fakeRecorder) RecordRetry(ctx context.Context, class string, backoff time.Duration) {
	f.retries++
}

func (f *fakeRecorder) RecordRetryExhausted(ctx context.Context, class string) {
	f.exhausted++
}

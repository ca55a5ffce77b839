package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/movie-catalog/internal/config"
	"github.com/spec-kit/movie-catalog/internal/events"
)

func TestWebhookReceivesSyncSummary(t *testing.T) {
	bodies := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		bodies <- string(raw)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: srv.URL}).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      "evt-1",
		Type:    events.EventMoviesSynchronized,
		Payload: events.MoviesSynchronizedPayload{RunID: "run-1", Count: 6},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	body := <-bodies
	if !strings.Contains(body, `"type":"movies_synchronized"`) || !strings.Contains(body, `"run_id":"run-1"`) {
		t.Fatalf("unexpected webhook body %s", body)
	}
}

func TestWebhookFailureIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: srv.URL}).RegisterHandlers()

	if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventMoviesSynchronized}); err == nil {
		t.Fatalf("expected delivery error")
	}
}

func TestNoWebhookConfigured(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{}).RegisterHandlers()

	if err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventMovieCreated, MovieID: "m"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

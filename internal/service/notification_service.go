package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/spec-kit/movie-catalog/internal/config"
	"github.com/spec-kit/movie-catalog/internal/events"
)

// NotificationService logs catalog events and forwards sync summaries to a webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	client     *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	timeout := time.Duration(cfg.WebhookTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		client:     &http.Client{Timeout: timeout},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventMovieCreated, n.handleMovieChanged)
	n.dispatcher.Subscribe(events.EventMovieUpdated, n.handleMovieChanged)
	n.dispatcher.Subscribe(events.EventMovieDeleted, n.handleMovieChanged)
	n.dispatcher.Subscribe(events.EventMoviesSynchronized, n.handleMoviesSynchronized)
}

func (n *NotificationService) handleMovieChanged(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("movie_id", event.MovieID),
		zap.String("actor", event.Actor.UserID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleMoviesSynchronized(ctx context.Context, event events.Event) error {
	n.logger.Info("MoviesSynchronized", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return n.sendWebhook(ctx, event)
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	n.logger.Debug("webhook delivered", zap.String("event_type", string(event.Type)), zap.Int("status", resp.StatusCode))
	return nil
}

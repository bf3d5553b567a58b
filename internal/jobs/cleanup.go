// Package jobs runs quorum's background work on asynq: the periodic
// cleanup of events whose dates are long past.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hibiken/asynq"

	"github.com/javiermolinar/quorum/internal/logger"
)

// TypeCleanup is the task type of expired-event cleanup.
const TypeCleanup = "quorum:cleanup"

// CleanupPayload is the body of a cleanup task.
type CleanupPayload struct {
	RetentionDays int `json:"retention_days"`
}

// Retention returns the retention window, zero meaning the service default.
func (p CleanupPayload) Retention() time.Duration {
	if p.RetentionDays <= 0 {
		return 0
	}
	return time.Duration(p.RetentionDays) * 24 * time.Hour
}

// NewCleanupTask builds a cleanup task.
func NewCleanupTask(retentionDays int) (*asynq.Task, error) {
	payload, err := json.Marshal(CleanupPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, fmt.Errorf("encoding cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeCleanup, payload, asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}

// Cleaner deletes expired events.
type Cleaner interface {
	CleanupExpired(ctx context.Context, retention time.Duration) ([]string, error)
}

// CleanupHandler processes cleanup tasks.
type CleanupHandler struct {
	cleaner Cleaner
	log     *log.Logger
}

// NewCleanupHandler creates a handler backed by cleaner.
func NewCleanupHandler(cleaner Cleaner) *CleanupHandler {
	return &CleanupHandler{
		cleaner: cleaner,
		log:     logger.With("component", "jobs"),
	}
}

// ProcessTask implements asynq.Handler.
func (h *CleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p CleanupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("decoding cleanup payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	ids, err := h.cleaner.CleanupExpired(ctx, p.Retention())
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}
	h.log.Info("cleanup task done", "deleted", len(ids))
	return nil
}

// NewMux routes quorum task types to their handlers.
func NewMux(cleaner Cleaner) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeCleanup, NewCleanupHandler(cleaner))
	return mux
}

// IsSkipRetry reports whether err tells asynq not to retry the task.
func IsSkipRetry(err error) bool {
	return errors.Is(err, asynq.SkipRetry)
}

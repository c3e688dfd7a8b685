// Package audit writes the append-only change log. Recording is
// best-effort: a failure is logged by the caller's outbox and never
// affects the primary operation.
package audit

import (
	"context"
	"time"

	"venuebook/pkg/logger"
	"venuebook/pkg/model"
)

type Recorder interface {
	Record(ctx context.Context, rec *model.AuditRecord) error
}

type recorder struct {
	repo Repository
	log  *logger.Logger
}

func NewRecorder(repo Repository, log *logger.Logger) Recorder {
	return &recorder{repo: repo, log: log}
}

func (r *recorder) Record(ctx context.Context, rec *model.AuditRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := r.repo.Insert(ctx, rec); err != nil {
		return err
	}

	r.log.Debug("Audit record written",
		"action", rec.Action,
		"entity_type", rec.EntityType,
		"entity_id", rec.EntityID,
		"actor_id", rec.ActorID,
	)
	return nil
}

// Package notifications persists in-app notification records and
// serves them back to their recipients. Emission is best-effort and
// runs off the request path; a failed write never rolls back the
// booking mutation that triggered it.
package notifications

import (
	"context"
	"errors"

	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"
)

type Service interface {
	// Emit writes exactly one notification for an accepted mutation.
	Emit(ctx context.Context, n *model.Notification) error
	ListForUser(ctx context.Context, principal *model.Principal, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error)
	MarkRead(ctx context.Context, principal *model.Principal, id string) error
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository, log *logger.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) Emit(ctx context.Context, n *model.Notification) error {
	if n.UserID == "" {
		return apperrors.InvalidInput("Notification recipient cannot be empty")
	}
	if !model.IsNotificationType(n.Type) {
		return apperrors.InvalidInput("Unknown notification type: " + n.Type)
	}
	n.IsRead = false

	if err := s.repo.Insert(ctx, n); err != nil {
		return apperrors.Internal("Failed to write notification", err)
	}

	s.log.Debug("Notification emitted",
		"user_id", n.UserID,
		"type", n.Type,
		"booking_id", n.BookingID,
	)
	return nil
}

func (s *service) ListForUser(ctx context.Context, principal *model.Principal, unreadOnly bool, limit int, offset int64) ([]*model.Notification, int64, error) {
	if principal == nil {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}

	notifications, err := s.repo.FindByUser(ctx, principal.ID, unreadOnly, limit, offset)
	if err != nil {
		s.log.Error("Failed to list notifications", "user_id", principal.ID, "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve notifications", err)
	}

	count, err := s.repo.CountByUser(ctx, principal.ID, unreadOnly)
	if err != nil {
		s.log.Error("Failed to count notifications", "user_id", principal.ID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count notifications", err)
	}

	return notifications, count, nil
}

func (s *service) MarkRead(ctx context.Context, principal *model.Principal, id string) error {
	if principal == nil {
		return apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return apperrors.InvalidInput("Notification ID cannot be empty")
	}

	err := s.repo.MarkRead(ctx, id, principal.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.NotFoundWithID("Notification", id)
		}
		if errors.Is(err, ErrInvalidID) {
			return apperrors.InvalidInput("Invalid notification ID format")
		}
		return apperrors.Internal("Failed to mark notification read", err)
	}

	return nil
}

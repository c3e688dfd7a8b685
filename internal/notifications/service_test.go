package notifications

import (
	"context"
	"testing"

	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"
)

type mockRepository struct {
	insertFunc      func(ctx context.Context, n *model.Notification) error
	findByUserFunc  func(ctx context.Context, userID string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, error)
	countByUserFunc func(ctx context.Context, userID string, unreadOnly bool) (int64, error)
	markReadFunc    func(ctx context.Context, id, userID string) error
}

func (m *mockRepository) Insert(ctx context.Context, n *model.Notification) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, n)
	}
	return nil
}

func (m *mockRepository) FindByUser(ctx context.Context, userID string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, unreadOnly, limit, offset)
	}
	return []*model.Notification{}, nil
}

func (m *mockRepository) CountByUser(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID, unreadOnly)
	}
	return 0, nil
}

func (m *mockRepository) MarkRead(ctx context.Context, id, userID string) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id, userID)
	}
	return nil
}

func newTestService(repo Repository) Service {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewService(repo, log)
}

func TestEmit_ForcesUnread(t *testing.T) {
	var inserted *model.Notification
	repo := &mockRepository{
		insertFunc: func(ctx context.Context, n *model.Notification) error {
			inserted = n
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.Emit(context.Background(), &model.Notification{
		UserID:    "user-1",
		Type:      model.NotifBookingApproved,
		Title:     "Booking approved",
		Message:   "Your booking was approved.",
		BookingID: "65f000000000000000000042",
		IsRead:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted == nil {
		t.Fatal("expected insert")
	}
	if inserted.IsRead {
		t.Error("emitted notifications must start unread")
	}
}

func TestEmit_RejectsUnknownType(t *testing.T) {
	svc := newTestService(&mockRepository{})

	err := svc.Emit(context.Background(), &model.Notification{
		UserID: "user-1",
		Type:   "carrier_pigeon",
	})
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestEmit_RejectsEmptyRecipient(t *testing.T) {
	svc := newTestService(&mockRepository{})

	err := svc.Emit(context.Background(), &model.Notification{
		Type: model.NotifBookingDenied,
	})
	if apperrors.AsAppError(err).Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestListForUser_ScopedToPrincipal(t *testing.T) {
	var capturedUserID string
	var capturedUnread bool
	repo := &mockRepository{
		findByUserFunc: func(ctx context.Context, userID string, unreadOnly bool, limit int, offset int64) ([]*model.Notification, error) {
			capturedUserID = userID
			capturedUnread = unreadOnly
			return []*model.Notification{{ID: "n1", UserID: userID}}, nil
		},
		countByUserFunc: func(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(repo)

	principal := &model.Principal{ID: "user-1", Role: model.RoleCustomer}
	notifications, count, err := svc.ListForUser(context.Background(), principal, true, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedUserID != "user-1" || !capturedUnread {
		t.Errorf("expected query scoped to user-1 unread, got user=%q unread=%v", capturedUserID, capturedUnread)
	}
	if len(notifications) != 1 || count != 1 {
		t.Errorf("expected 1 notification with count 1, got %d/%d", len(notifications), count)
	}
}

func TestMarkRead_NotFoundForForeignNotification(t *testing.T) {
	repo := &mockRepository{
		markReadFunc: func(ctx context.Context, id, userID string) error {
			// Owner-scoped update matched nothing.
			return ErrNotFound
		},
	}
	svc := newTestService(repo)

	principal := &model.Principal{ID: "user-1", Role: model.RoleCustomer}
	err := svc.MarkRead(context.Background(), principal, "65f000000000000000000077")
	if apperrors.AsAppError(err).Code != apperrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

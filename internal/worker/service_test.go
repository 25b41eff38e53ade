package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	"olymatch/internal/domain"
	"olymatch/internal/notification"
	"olymatch/internal/queue"
	"olymatch/internal/store"
	storemem "olymatch/internal/store/memory"
)

// recordingNotifier captures mutual-match notifications.
type recordingNotifier struct {
	notified []*domain.Like
}

func (n *recordingNotifier) NotifyMutualLike(ctx context.Context, like *domain.Like) {
	n.notified = append(n.notified, like)
}

// flakyLikeRepository wraps the in-memory repository and fails Insert while
// failing is set, simulating a transient store outage.
type flakyLikeRepository struct {
	*storemem.LikeRepository
	failing bool
}

func (r *flakyLikeRepository) Insert(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	if r.failing {
		return nil, errors.New("connection refused")
	}
	return r.LikeRepository.Insert(ctx, like)
}

// testSetup creates all dependencies needed for worker tests.
func testSetup() (*Service, *storemem.UserRepository, *flakyLikeRepository) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	userRepo := storemem.NewUserRepository()
	likeRepo := &flakyLikeRepository{LikeRepository: storemem.NewLikeRepository()}
	notifier := notification.NewStubNotifier(logger)

	service := NewService(nil, userRepo, likeRepo, notifier, logger)

	return service, userRepo, likeRepo
}

func seedUsers(ctx context.Context, repo store.UserRepository, ids ...domain.TelegramID) {
	for _, id := range ids {
		_ = repo.Create(ctx, &domain.User{TelegramID: id, FirstName: "test"})
	}
}

func likeBody(t *testing.T, intent domain.LikeIntent) []byte {
	t.Helper()
	body, err := json.Marshal(intent)
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return body
}

func TestWorker_PersistsValidLike(t *testing.T) {
	service, userRepo, likeRepo := testSetup()
	ctx := context.Background()

	seedUsers(ctx, userRepo, 100, 200)

	text := "  nice profile  "
	intent := domain.LikeIntent{
		FromUserTelegramID: 100,
		ToUserTelegramID:   200,
		Text:               &text,
		IsLike:             true,
	}

	verdict := service.handleDelivery(ctx, &queue.Delivery{
		Body:      likeBody(t, intent),
		MessageID: "msg-1",
	})

	if verdict != queue.Ack {
		t.Errorf("verdict = %v, want %v", verdict, queue.Ack)
	}
	if likeRepo.Count() != 1 {
		t.Fatalf("like count = %v, want 1", likeRepo.Count())
	}

	likes, err := likeRepo.ListReceived(ctx, 200)
	if err != nil {
		t.Fatalf("ListReceived() error = %v", err)
	}
	if len(likes) != 1 {
		t.Fatalf("received likes = %v, want 1", len(likes))
	}
	like := likes[0]
	if like.ID == 0 {
		t.Error("persisted like has no assigned id")
	}
	if like.Text == nil || *like.Text != "nice profile" {
		t.Errorf("Text = %v, want %q", like.Text, "nice profile")
	}
	if like.IsReaded {
		t.Error("IsReaded = true, want false on fresh like")
	}
}

func TestWorker_DropsMalformedMessage(t *testing.T) {
	service, _, likeRepo := testSetup()
	ctx := context.Background()

	verdict := service.handleDelivery(ctx, &queue.Delivery{
		Body:      []byte(`{broken`),
		MessageID: "msg-1",
	})

	if verdict != queue.Ack {
		t.Errorf("verdict = %v, want %v (malformed messages are dropped, not requeued)", verdict, queue.Ack)
	}
	if likeRepo.Count() != 0 {
		t.Errorf("like count = %v, want 0", likeRepo.Count())
	}
}

func TestWorker_DropsSelfLike(t *testing.T) {
	service, userRepo, likeRepo := testSetup()
	ctx := context.Background()

	seedUsers(ctx, userRepo, 100)

	intent := domain.LikeIntent{FromUserTelegramID: 100, ToUserTelegramID: 100, IsLike: true}
	verdict := service.handleDelivery(ctx, &queue.Delivery{
		Body:      likeBody(t, intent),
		MessageID: "msg-1",
	})

	if verdict != queue.Ack {
		t.Errorf("verdict = %v, want %v", verdict, queue.Ack)
	}
	if likeRepo.Count() != 0 {
		t.Errorf("like count = %v, want 0", likeRepo.Count())
	}
}

func TestWorker_DropsLikeForUnknownUser(t *testing.T) {
	service, userRepo, likeRepo := testSetup()
	ctx := context.Background()

	// Only the sender exists.
	seedUsers(ctx, userRepo, 100)

	intent := domain.LikeIntent{FromUserTelegramID: 100, ToUserTelegramID: 200, IsLike: true}
	verdict := service.handleDelivery(ctx, &queue.Delivery{
		Body:      likeBody(t, intent),
		MessageID: "msg-1",
	})

	if verdict != queue.Ack {
		t.Errorf("verdict = %v, want %v (unknown user is permanent, not retried)", verdict, queue.Ack)
	}
	if likeRepo.Count() != 0 {
		t.Errorf("like count = %v, want 0", likeRepo.Count())
	}
}

func TestWorker_RequeuesTransientFailureOnce(t *testing.T) {
	service, userRepo, likeRepo := testSetup()
	ctx := context.Background()

	seedUsers(ctx, userRepo, 100, 200)
	likeRepo.failing = true

	intent := domain.LikeIntent{FromUserTelegramID: 100, ToUserTelegramID: 200, IsLike: true}
	body := likeBody(t, intent)

	// First delivery of a failing message is requeued.
	verdict := service.handleDelivery(ctx, &queue.Delivery{
		Body:      body,
		MessageID: "msg-1",
	})
	if verdict != queue.Requeue {
		t.Errorf("first attempt verdict = %v, want %v", verdict, queue.Requeue)
	}

	// The redelivery of a still-failing message is dropped.
	verdict = service.handleDelivery(ctx, &queue.Delivery{
		Body:        body,
		MessageID:   "msg-1",
		Redelivered: true,
	})
	if verdict != queue.Ack {
		t.Errorf("second attempt verdict = %v, want %v", verdict, queue.Ack)
	}
	if likeRepo.Count() != 0 {
		t.Errorf("like count = %v, want 0", likeRepo.Count())
	}
}

func TestWorker_NotifiesOnMutualLike(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	userRepo := storemem.NewUserRepository()
	likeRepo := storemem.NewLikeRepository()
	notifier := &recordingNotifier{}
	service := NewService(nil, userRepo, likeRepo, notifier, logger)
	ctx := context.Background()

	seedUsers(ctx, userRepo, 100, 200)

	// First direction: no reciprocal yet, no notification.
	verdict := service.handleDelivery(ctx, &queue.Delivery{
		Body:      likeBody(t, domain.LikeIntent{FromUserTelegramID: 100, ToUserTelegramID: 200, IsLike: true}),
		MessageID: "msg-1",
	})
	if verdict != queue.Ack {
		t.Fatalf("verdict = %v, want %v", verdict, queue.Ack)
	}
	if len(notifier.notified) != 0 {
		t.Fatalf("notifications = %d, want 0 before reciprocation", len(notifier.notified))
	}

	// Reciprocal like completes the match.
	verdict = service.handleDelivery(ctx, &queue.Delivery{
		Body:      likeBody(t, domain.LikeIntent{FromUserTelegramID: 200, ToUserTelegramID: 100, IsLike: true}),
		MessageID: "msg-2",
	})
	if verdict != queue.Ack {
		t.Fatalf("verdict = %v, want %v", verdict, queue.Ack)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("notifications = %d, want 1 after reciprocation", len(notifier.notified))
	}
	if notifier.notified[0].FromUserTelegramID != 200 {
		t.Errorf("notified like sender = %v, want 200", notifier.notified[0].FromUserTelegramID)
	}
}

func TestWorker_RedeliveryAfterSuccessCreatesDuplicate(t *testing.T) {
	service, userRepo, likeRepo := testSetup()
	ctx := context.Background()

	seedUsers(ctx, userRepo, 100, 200)

	intent := domain.LikeIntent{FromUserTelegramID: 100, ToUserTelegramID: 200, IsLike: true}
	body := likeBody(t, intent)

	first := service.handleDelivery(ctx, &queue.Delivery{Body: body, MessageID: "msg-1"})
	second := service.handleDelivery(ctx, &queue.Delivery{Body: body, MessageID: "msg-1", Redelivered: true})

	if first != queue.Ack || second != queue.Ack {
		t.Errorf("verdicts = %v, %v, want both %v", first, second, queue.Ack)
	}
	// At-least-once delivery without a uniqueness constraint: both
	// deliveries persist.
	if likeRepo.Count() != 2 {
		t.Errorf("like count = %v, want 2", likeRepo.Count())
	}
}

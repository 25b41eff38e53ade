package integration

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"olymatch/internal/domain"
	"olymatch/internal/intake"
	"olymatch/internal/notification"
	queuemem "olymatch/internal/queue/memory"
	"olymatch/internal/store"
	storemem "olymatch/internal/store/memory"
	"olymatch/internal/worker"
)

// brokenLikeRepository injects transient Insert failures to exercise the
// retry policy end to end.
type brokenLikeRepository struct {
	*storemem.LikeRepository
	failuresLeft int
}

func (r *brokenLikeRepository) Insert(ctx context.Context, like *domain.Like) (*domain.Like, error) {
	if r.failuresLeft > 0 {
		r.failuresLeft--
		return nil, errors.New("store unavailable")
	}
	return r.LikeRepository.Insert(ctx, like)
}

var _ = Describe("Like Pipeline", func() {
	var (
		ctx      context.Context
		cancel   context.CancelFunc
		msgQueue *queuemem.Queue
		userRepo *storemem.UserRepository
		likeRepo *brokenLikeRepository
		producer *intake.Service
		workerWg chan struct{}
	)

	startWorker := func(likes store.LikeRepository) {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		notifier := notification.NewStubNotifier(logger)
		svc := worker.NewService(msgQueue, userRepo, likes, notifier, logger)

		workerWg = make(chan struct{})
		go func() {
			defer close(workerWg)
			_ = svc.Start(ctx)
		}()
	}

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		msgQueue = queuemem.NewQueue(100)
		userRepo = storemem.NewUserRepository()
		likeRepo = &brokenLikeRepository{LikeRepository: storemem.NewLikeRepository()}
		producer = intake.NewService(msgQueue, logger)

		Expect(userRepo.Create(ctx, &domain.User{TelegramID: 100, FirstName: "Alice"})).To(Succeed())
		Expect(userRepo.Create(ctx, &domain.User{TelegramID: 200, FirstName: "Bob"})).To(Succeed())
	})

	AfterEach(func() {
		cancel()
		if workerWg != nil {
			Eventually(workerWg, 2*time.Second).Should(BeClosed())
			workerWg = nil
		}
	})

	Context("when a valid like is submitted", func() {
		It("persists the like asynchronously", func() {
			startWorker(likeRepo)

			text := "  saw your IMO gold  "
			intent := &domain.LikeIntent{
				FromUserTelegramID: 100,
				ToUserTelegramID:   200,
				Text:               &text,
				IsLike:             true,
			}
			Expect(producer.SubmitLike(ctx, intent)).To(Succeed())

			Eventually(func() int {
				return likeRepo.Count()
			}, 2*time.Second, 10*time.Millisecond).Should(Equal(1))

			likes, err := likeRepo.ListReceived(ctx, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(likes).To(HaveLen(1))
			Expect(likes[0].ID).NotTo(BeZero())
			Expect(likes[0].FromUserTelegramID).To(Equal(domain.TelegramID(100)))
			Expect(*likes[0].Text).To(Equal("saw your IMO gold"))
			Expect(likes[0].IsReaded).To(BeFalse())
		})
	})

	Context("when the target user does not exist", func() {
		It("drops the message without retrying", func() {
			startWorker(likeRepo)

			intent := &domain.LikeIntent{
				FromUserTelegramID: 100,
				ToUserTelegramID:   999,
				IsLike:             true,
			}
			Expect(producer.SubmitLike(ctx, intent)).To(Succeed())

			Eventually(msgQueue.Len, 2*time.Second, 10*time.Millisecond).Should(BeZero())
			Consistently(likeRepo.Count, 200*time.Millisecond).Should(BeZero())
		})
	})

	Context("when a malformed message reaches the queue", func() {
		It("drops it and keeps processing later messages", func() {
			startWorker(likeRepo)

			Expect(msgQueue.Publish(ctx, []byte(`{not json`))).To(Succeed())

			intent := &domain.LikeIntent{
				FromUserTelegramID: 100,
				ToUserTelegramID:   200,
				IsLike:             true,
			}
			Expect(producer.SubmitLike(ctx, intent)).To(Succeed())

			Eventually(likeRepo.Count, 2*time.Second, 10*time.Millisecond).Should(Equal(1))
		})
	})

	Context("when the store fails once", func() {
		It("requeues the message and persists on redelivery", func() {
			likeRepo.failuresLeft = 1
			startWorker(likeRepo)

			intent := &domain.LikeIntent{
				FromUserTelegramID: 100,
				ToUserTelegramID:   200,
				IsLike:             true,
			}
			Expect(producer.SubmitLike(ctx, intent)).To(Succeed())

			Eventually(likeRepo.Count, 2*time.Second, 10*time.Millisecond).Should(Equal(1))
		})
	})

	Context("when the store keeps failing", func() {
		It("drops the message after the redelivery attempt", func() {
			likeRepo.failuresLeft = 10
			startWorker(likeRepo)

			intent := &domain.LikeIntent{
				FromUserTelegramID: 100,
				ToUserTelegramID:   200,
				IsLike:             true,
			}
			Expect(producer.SubmitLike(ctx, intent)).To(Succeed())

			// First delivery and one redelivery both fail, then the
			// message is dropped and the queue drains.
			Eventually(msgQueue.Len, 2*time.Second, 10*time.Millisecond).Should(BeZero())
			Consistently(likeRepo.Count, 200*time.Millisecond).Should(BeZero())
			Expect(likeRepo.failuresLeft).To(Equal(8))
		})
	})

	Context("when an enqueued message carries a client-supplied id", func() {
		It("ignores the id and assigns its own", func() {
			startWorker(likeRepo)

			payload, err := json.Marshal(map[string]interface{}{
				"id":              424242,
				"from_user_tg_id": 100,
				"to_user_tg_id":   200,
				"is_like":         true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(msgQueue.Publish(ctx, payload)).To(Succeed())

			Eventually(likeRepo.Count, 2*time.Second, 10*time.Millisecond).Should(Equal(1))

			likes, err := likeRepo.ListReceived(ctx, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(likes[0].ID).NotTo(Equal(int64(424242)))
		})
	})
})

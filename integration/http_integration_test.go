package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"olymatch/internal/api"
	"olymatch/internal/config"
	"olymatch/internal/domain"
	"olymatch/internal/intake"
	"olymatch/internal/notification"
	queuemem "olymatch/internal/queue/memory"
	storemem "olymatch/internal/store/memory"
	"olymatch/internal/worker"
)

// testStack is a full in-process deployment: HTTP API, in-memory queue,
// in-memory stores, and a running worker goroutine.
type testStack struct {
	server   *api.Server
	msgQueue *queuemem.Queue
	users    *storemem.UserRepository
	likes    *storemem.LikeRepository
	cancel   context.CancelFunc
}

func newTestStack() *testStack {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	msgQueue := queuemem.NewQueue(100)
	userRepo := storemem.NewUserRepository()
	likeRepo := storemem.NewLikeRepository()
	olympiadRepo := storemem.NewOlympiadRepository()

	producer := intake.NewService(msgQueue, logger)
	notifier := notification.NewStubNotifier(logger)
	workerSvc := worker.NewService(msgQueue, userRepo, likeRepo, notifier, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = workerSvc.Start(ctx) }()

	serverCfg := &config.ServerConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  5 * time.Second,
	}

	server := api.NewServer(api.ServerDeps{
		Config:          serverCfg,
		Logger:          logger,
		LikeHandler:     api.NewLikeHandler(producer, likeRepo, logger),
		UserHandler:     api.NewUserHandler(userRepo, logger),
		OlympiadHandler: api.NewOlympiadHandler(olympiadRepo, logger),
	})

	return &testStack{
		server:   server,
		msgQueue: msgQueue,
		users:    userRepo,
		likes:    likeRepo,
		cancel:   cancel,
	}
}

func (s *testStack) close() {
	s.cancel()
	_ = s.msgQueue.Close()
}

// do performs an in-process HTTP request against the fiber app.
func (s *testStack) do(method, path string, body interface{}) *http.Response {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		bodyReader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.server.App().Test(req, 5000)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

func parseEnvelope(resp *http.Response) map[string]interface{} {
	defer resp.Body.Close()
	var result map[string]interface{}
	Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
	return result
}

var _ = Describe("HTTP API", func() {
	var stack *testStack

	BeforeEach(func() {
		stack = newTestStack()
	})

	AfterEach(func() {
		stack.close()
	})

	Describe("Health Check", func() {
		It("returns healthy status", func() {
			resp := stack.do("GET", "/healthz", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			result := parseEnvelope(resp)
			Expect(result["success"]).To(BeTrue())
		})
	})

	Describe("Users API", func() {
		It("creates, fetches, updates, and deletes a user", func() {
			payload := map[string]interface{}{
				"tg_id":      123456,
				"first_name": "Alice",
				"age":        19,
				"city":       "Kazan",
			}

			resp := stack.do("POST", "/v1/users", payload)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			resp = stack.do("GET", "/v1/users/123456", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			result := parseEnvelope(resp)
			user := result["data"].(map[string]interface{})
			Expect(user["first_name"]).To(Equal("Alice"))

			payload["city"] = "Moscow"
			resp = stack.do("PUT", "/v1/users/123456", payload)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			resp = stack.do("DELETE", "/v1/users/123456", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))

			resp = stack.do("GET", "/v1/users/123456", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})

		It("rejects a user without a telegram id", func() {
			resp := stack.do("POST", "/v1/users", map[string]interface{}{
				"first_name": "Nobody",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})
	})

	Describe("Likes API", func() {
		BeforeEach(func() {
			ctx := context.Background()
			Expect(stack.users.Create(ctx, &domain.User{TelegramID: 100, FirstName: "Alice"})).To(Succeed())
			Expect(stack.users.Create(ctx, &domain.User{TelegramID: 200, FirstName: "Bob"})).To(Succeed())
		})

		It("accepts a like and persists it through the worker", func() {
			resp := stack.do("POST", "/v1/likes", map[string]interface{}{
				"from_user_tg_id": 100,
				"to_user_tg_id":   200,
				"text":            "hi!",
				"is_like":         true,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

			result := parseEnvelope(resp)
			data := result["data"].(map[string]interface{})
			Expect(data["status"]).To(Equal("enqueued"))

			Eventually(stack.likes.Count, 2*time.Second, 10*time.Millisecond).Should(Equal(1))

			resp = stack.do("GET", "/v1/users/200/likes", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			listResult := parseEnvelope(resp)
			likes := listResult["data"].([]interface{})
			Expect(likes).To(HaveLen(1))
		})

		It("accepts ids sent as numeric strings", func() {
			resp := stack.do("POST", "/v1/likes", map[string]interface{}{
				"from_user_tg_id": "100",
				"to_user_tg_id":   "200",
				"is_like":         true,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))
			resp.Body.Close()

			Eventually(stack.likes.Count, 2*time.Second, 10*time.Millisecond).Should(Equal(1))
		})

		It("rejects a self-like synchronously", func() {
			resp := stack.do("POST", "/v1/likes", map[string]interface{}{
				"from_user_tg_id": 100,
				"to_user_tg_id":   100,
				"is_like":         true,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			result := parseEnvelope(resp)
			Expect(result["success"]).To(BeFalse())
		})

		It("marks a like as read", func() {
			ctx := context.Background()
			like, err := stack.likes.Insert(ctx, &domain.Like{
				FromUserTelegramID: 100,
				ToUserTelegramID:   200,
				IsLike:             true,
			})
			Expect(err).NotTo(HaveOccurred())

			resp := stack.do("PATCH", "/v1/likes/"+strconv.FormatInt(like.ID, 10)+"/read", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			resp.Body.Close()

			likes, err := stack.likes.ListReceived(ctx, 200)
			Expect(err).NotTo(HaveOccurred())
			Expect(likes[0].IsReaded).To(BeTrue())
		})
	})

	Describe("Olympiads API", func() {
		BeforeEach(func() {
			ctx := context.Background()
			Expect(stack.users.Create(ctx, &domain.User{TelegramID: 100, FirstName: "Alice"})).To(Succeed())
		})

		It("creates and lists achievements for a user", func() {
			resp := stack.do("POST", "/v1/olympiads", map[string]interface{}{
				"name":       "All-Russian Olympiad",
				"profile":    "mathematics",
				"level":      1,
				"user_tg_id": 100,
				"result":     0,
				"year":       "2024",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			resp.Body.Close()

			resp = stack.do("GET", "/v1/users/100/olympiads", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			result := parseEnvelope(resp)
			olympiads := result["data"].([]interface{})
			Expect(olympiads).To(HaveLen(1))
		})

		It("rejects an achievement with an out-of-range result", func() {
			resp := stack.do("POST", "/v1/olympiads", map[string]interface{}{
				"name":       "Some Olympiad",
				"profile":    "physics",
				"user_tg_id": 100,
				"result":     9,
				"year":       "2024",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})
	})
})

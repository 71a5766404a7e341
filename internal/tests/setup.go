package tests

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/houseoftheai/server/internal/auth"
	"github.com/houseoftheai/server/internal/email"
	httphandler "github.com/houseoftheai/server/internal/http"
	"github.com/houseoftheai/server/internal/http/handlers"
	"github.com/houseoftheai/server/internal/model"
	"github.com/houseoftheai/server/internal/repo"
)

// In-memory stand-ins for the Mongo repositories. They reproduce the unique
// indexes the real collections carry so the full HTTP surface can be
// exercised without a database.

type memUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]model.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id bson.ObjectID) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return model.User{}, repo.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) delete(id bson.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type memPendingRepo struct {
	mu      sync.Mutex
	pending map[bson.ObjectID]model.PendingUser
}

func (r *memPendingRepo) GetByID(ctx context.Context, id bson.ObjectID) (model.PendingUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[id]
	if !ok {
		return model.PendingUser{}, repo.ErrNotFound
	}
	return p, nil
}

func (r *memPendingRepo) Create(ctx context.Context, p model.PendingUser) (model.PendingUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.pending {
		if existing.Email == p.Email {
			return model.PendingUser{}, repo.ErrDuplicate
		}
	}
	p.ID = bson.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	r.pending[p.ID] = p
	return p, nil
}

func (r *memPendingRepo) ReplaceOTP(ctx context.Context, id bson.ObjectID, otpHash string, otpExpiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[id]
	if !ok {
		return repo.ErrNotFound
	}
	p.OTPHash = otpHash
	p.OTPExpiry = otpExpiry
	r.pending[id] = p
	return nil
}

func (r *memPendingRepo) DeleteByID(ctx context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, id)
	return nil
}

func (r *memPendingRepo) DeleteByEmail(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.pending {
		if p.Email == email {
			delete(r.pending, id)
		}
	}
	return nil
}

func (r *memPendingRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, p := range r.pending {
		if p.OTPExpiry.Before(cutoff) {
			delete(r.pending, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memPendingRepo) setExpiry(id bson.ObjectID, expiry time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pending[id]
	p.OTPExpiry = expiry
	r.pending[id] = p
}

type memChatRepo struct {
	mu       sync.Mutex
	messages map[string][]model.ChatMessage
}

func (r *memChatRepo) Save(ctx context.Context, aiType string, userID bson.ObjectID, message, response string) error {
	if !repo.ValidAssistant(aiType) {
		return repo.ErrUnknownAssistant
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[aiType] = append(r.messages[aiType], model.ChatMessage{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Message:   message,
		Response:  response,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (r *memChatRepo) History(ctx context.Context, aiType string, userID bson.ObjectID) ([]model.ChatMessage, error) {
	if !repo.ValidAssistant(aiType) {
		return nil, repo.ErrUnknownAssistant
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	history := []model.ChatMessage{}
	for _, msg := range r.messages[aiType] {
		if msg.UserID == userID {
			history = append(history, msg)
		}
	}
	return history, nil
}

type memVisitorRepo struct {
	mu       sync.Mutex
	visitors map[string]bool
	count    int64
}

func (r *memVisitorRepo) Exists(ctx context.Context, visitorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visitors[visitorID], nil
}

func (r *memVisitorRepo) Create(ctx context.Context, visitorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visitors[visitorID] {
		return repo.ErrDuplicate
	}
	r.visitors[visitorID] = true
	return nil
}

func (r *memVisitorRepo) IncrementCount(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return r.count, nil
}

func (r *memVisitorRepo) CurrentCount(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, nil
}

type memFeedbackRepo struct {
	mu       sync.Mutex
	feedback []model.Feedback
}

func (r *memFeedbackRepo) Create(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = bson.NewObjectID()
	f.CreatedAt = time.Now().UTC()
	r.feedback = append(r.feedback, f)
	return f, nil
}

// captureSender records outbound emails so tests can read OTP codes
type captureSender struct {
	mu   sync.Mutex
	sent []email.SendParams
	err  error
}

func (s *captureSender) Send(ctx context.Context, params email.SendParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, params)
	return nil
}

func (s *captureSender) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *captureSender) last() (email.SendParams, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return email.SendParams{}, false
	}
	return s.sent[len(s.sent)-1], true
}

var otpRegex = regexp.MustCompile(`\b\d{6}\b`)

func (s *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	msg, ok := s.last()
	if !ok {
		t.Fatal("expected an email to have been sent")
	}
	code := otpRegex.FindString(msg.BodyHTML)
	if code == "" {
		t.Fatalf("email body contains no 6-digit code: %s", msg.BodyHTML)
	}
	return code
}

const testJWTSecret = "api-test-secret"

// testServer wires the real router and services over in-memory repositories
type testServer struct {
	Server   *httptest.Server
	users    *memUserRepo
	pending  *memPendingRepo
	chats    *memChatRepo
	visitors *memVisitorRepo
	feedback *memFeedbackRepo
	sender   *captureSender
	jwt      *auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ts := &testServer{
		users:    &memUserRepo{users: make(map[bson.ObjectID]model.User)},
		pending:  &memPendingRepo{pending: make(map[bson.ObjectID]model.PendingUser)},
		chats:    &memChatRepo{messages: make(map[string][]model.ChatMessage)},
		visitors: &memVisitorRepo{visitors: make(map[string]bool)},
		feedback: &memFeedbackRepo{},
		sender:   &captureSender{},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.jwt = auth.NewJWTService(testJWTSecret)
	authService := auth.NewAuthService(ts.users, ts.pending, auth.NewOTPIssuer(ts.sender), log)

	router := httphandler.NewRouter(httphandler.RouterDeps{
		Auth:        handlers.NewAuthHandler(authService, ts.jwt, false, log),
		Chat:        handlers.NewChatHandler(ts.chats, log),
		Visitor:     handlers.NewVisitorHandler(ts.visitors, log),
		Feedback:    handlers.NewFeedbackHandler(ts.feedback, ts.sender, "support@houseoftheai.app", log),
		JWTService:  ts.jwt,
		Users:       ts.users,
		Healthcheck: func(context.Context) error { return nil },
		FrontendURL: "http://localhost:5173",
	})

	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Server.Close)
	return ts
}

// client returns an HTTP client with a cookie jar so the session cookie set
// by verify-otp and login flows into subsequent requests.
func (ts *testServer) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

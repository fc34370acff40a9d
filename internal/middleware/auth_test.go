package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"luzzen/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testCookieName = "test_session"

// fakeSessionStore keeps sessions in a map for middleware tests
type fakeSessionStore struct {
	sessions map[string]session.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]session.Session)}
}

func (f *fakeSessionStore) Create(ctx context.Context, sess session.Session) (string, error) {
	token := uuid.NewString()
	f.sessions[token] = sess
	return token, nil
}

func (f *fakeSessionStore) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, ok := f.sessions[sessionID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return &sess, nil
}

func (f *fakeSessionStore) Delete(ctx context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func authedHandler(t *testing.T, store session.Store) http.Handler {
	t.Helper()
	mw := Auth(store, testCookieName, zap.NewNop())
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSession(r.Context())
		if !ok {
			t.Error("session missing from context inside protected handler")
		}
		w.Header().Set("X-User-ID", sess.UserID.String())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthMissingCookie(t *testing.T) {
	handler := authedHandler(t, newFakeSessionStore())

	req := httptest.NewRequest("GET", "/api/cart", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if resp.Error.Message != "authentication required" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
}

func TestAuthUnknownSession(t *testing.T) {
	handler := authedHandler(t, newFakeSessionStore())

	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "stale-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthValidSessionReachesHandler(t *testing.T) {
	store := newFakeSessionStore()
	userID := uuid.New()
	token, _ := store.Create(context.Background(), session.Session{
		UserID:   userID,
		UserName: "Test",
	})

	handler := authedHandler(t, store)

	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-User-ID"); got != userID.String() {
		t.Errorf("expected user %s in context, got %s", userID, got)
	}
}

func TestAuthLogoutInvalidatesSession(t *testing.T) {
	store := newFakeSessionStore()
	token, _ := store.Create(context.Background(), session.Session{UserID: uuid.New()})

	handler := authedHandler(t, store)

	req := httptest.NewRequest("GET", "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", w.Code)
	}

	// Deleting the session makes the same cookie worthless
	store.Delete(context.Background(), token)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}

func TestRequireAdminForbidsRegularUsers(t *testing.T) {
	store := newFakeSessionStore()
	userToken, _ := store.Create(context.Background(), session.Session{UserID: uuid.New(), IsAdmin: false})
	adminToken, _ := store.Create(context.Background(), session.Session{UserID: uuid.New(), IsAdmin: true})

	auth := Auth(store, testCookieName, zap.NewNop())
	admin := RequireAdmin(zap.NewNop())
	handler := auth(admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	cases := []struct {
		name     string
		token    string
		expected int
	}{
		{"regular user", userToken, http.StatusForbidden},
		{"admin user", adminToken, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/admin/dashboard", nil)
			req.AddCookie(&http.Cookie{Name: testCookieName, Value: tc.token})
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, w.Code)
			}
		})
	}
}

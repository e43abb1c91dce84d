package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillsmatch/apiserver/internal/services"
	"github.com/skillsmatch/apiserver/internal/store"
	"github.com/skillsmatch/apiserver/types"
)

const testSecret = "test-secret"

// memUserRepo is an in-memory services.UserRepository.
type memUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int]types.User{}, nextID: 1}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByVerificationToken(_ context.Context, token string) (types.User, error) {
	for _, user := range r.users {
		if user.VerificationToken != "" && user.VerificationToken == token {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (types.User, error) {
	for _, user := range r.users {
		if user.ResetTokenHash == tokenHash && user.ResetTokenExpires != nil && user.ResetTokenExpires.After(now) {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetRoleByName(_ context.Context, name string) (types.Role, error) {
	switch name {
	case types.RoleAdmin:
		return types.Role{ID: 1, Name: name}, nil
	case types.RoleRecruiter:
		return types.Role{ID: 2, Name: name}, nil
	case types.RoleJobseeker:
		return types.Role{ID: 3, Name: name}, nil
	}
	return types.Role{}, store.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context, offset, limit int) ([]types.User, int, error) {
	var out []types.User
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, len(out), nil
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func newAuthFixture() (*chi.Mux, *services.UserService, *memUserRepo) {
	repo := newMemUserRepo()
	userService := services.NewUserService(repo, services.NopNotifier{}, "https://app.example.com")

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, testSecret, time.Hour)
	})
	return r, userService, repo
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndVerify(t *testing.T, router http.Handler, repo *memUserRepo, email string) types.User {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FullName: "Test User",
		Email:    email,
		Password: "supersecret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}

	user := repo.users[resp.User.ID]
	user.EmailVerified = true
	repo.users[user.ID] = user
	return user
}

func TestRegisterEndpoint(t *testing.T) {
	router, _, _ := newAuthFixture()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FullName: "Ada",
		Email:    "ada@example.com",
		Password: "supersecret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" || resp.User.Email != "ada@example.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Duplicate email.
	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FullName: "Ada Again", Email: "ada@example.com", Password: "supersecret",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	// Short password.
	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FullName: "B", Email: "b@example.com", Password: "short",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	router, _, repo := newAuthFixture()
	registerAndVerify(t, router, repo, "login@example.com")

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email: "login@example.com", Password: "supersecret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("no token issued")
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email: "login@example.com", Password: "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}
}

func TestLoginUnverified(t *testing.T) {
	router, _, _ := newAuthFixture()
	doJSON(t, router, http.MethodPost, "/auth/register", "", RegisterRequest{
		FullName: "U", Email: "unverified@example.com", Password: "supersecret",
	})

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email: "unverified@example.com", Password: "supersecret",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unverified account, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequireAuth(t *testing.T) {
	router, _, repo := newAuthFixture()
	user := registerAndVerify(t, router, repo, "me@example.com")

	// No token.
	rec := doJSON(t, router, http.MethodGet, "/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}

	// Garbage token.
	rec = doJSON(t, router, http.MethodGet, "/auth/me", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}

	// Token signed with the wrong secret.
	forged, err := issueToken(user, []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = doJSON(t, router, http.MethodGet, "/auth/me", forged, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: expected 401, got %d", rec.Code)
	}

	// Valid token.
	token, err := issueToken(user, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var me types.User
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != user.ID {
		t.Fatalf("wrong identity: %+v", me)
	}

	// Expired token.
	expired, err := issueToken(user, []byte(testSecret), -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec = doJSON(t, router, http.MethodGet, "/auth/me", expired, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthResolvesCurrentState(t *testing.T) {
	router, _, repo := newAuthFixture()
	user := registerAndVerify(t, router, repo, "stale@example.com")

	token, err := issueToken(user, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// A role change in the store takes effect on the very next request;
	// the role claim in the token is never trusted.
	updated := repo.users[user.ID]
	updated.RoleName = types.RoleRecruiter
	repo.users[user.ID] = updated

	rec := doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	var me types.User
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.RoleName != types.RoleRecruiter {
		t.Fatalf("stale role served: %q", me.RoleName)
	}

	// Deactivation locks the token out entirely.
	updated.IsActive = false
	repo.users[user.ID] = updated
	rec = doJSON(t, router, http.MethodGet, "/auth/me", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deactivated user: expected 401, got %d", rec.Code)
	}
}

func TestChangePasswordEndpoint(t *testing.T) {
	router, _, repo := newAuthFixture()
	user := registerAndVerify(t, router, repo, "change@example.com")
	token, err := issueToken(user, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/auth/change-password", token, ChangePasswordRequest{
		CurrentPassword: "wrongcurrent", NewPassword: "newpassword1",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current password: expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/change-password", token, ChangePasswordRequest{
		CurrentPassword: "supersecret", NewPassword: "newpassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{
		Email: "change@example.com", Password: "newpassword1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login with new password: expected 200, got %d", rec.Code)
	}
}

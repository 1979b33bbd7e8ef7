// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/auth"
	"github.com/carterperez-dev/stackit/internal/config"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
)

type fakeRepo struct {
	mu     sync.Mutex
	users  map[string]*User
	counts map[string]ContentCounts
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  map[string]*User{},
		counts: map[string]ContentCounts{},
	}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.ExternalID == u.ExternalID || existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u.IsActive = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByExternalID(_ context.Context, externalID string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by external id: %w", core.ErrNotFound)
}

func (f *fakeRepo) UpdateProfile(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.users[u.ID]
	if !ok || !stored.IsActive {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	stored.Bio, stored.Location, stored.Website = u.Bio, u.Location, u.Website
	stored.WatchedTags = u.WatchedTags
	return nil
}

func (f *fakeRepo) UpdateRole(_ context.Context, id string, role access.Role) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("update role: %w", core.ErrNotFound)
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, params ListUsersParams) ([]User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []User
	for _, u := range f.users {
		if params.Role != "" && string(u.Role) != params.Role {
			continue
		}
		if params.Search != "" && !strings.Contains(u.Email, params.Search) {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeRepo) CountContent(_ context.Context, id string) (ContentCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[id], nil
}

func (f *fakeRepo) ListQuestionSummaries(context.Context, string, core.Page) ([]QuestionSummary, error) {
	return []QuestionSummary{{ID: "q1", Title: "How do I close a channel?", VoteScore: 3}}, nil
}

func (f *fakeRepo) ListAnswerSummaries(context.Context, string, core.Page) ([]AnswerSummary, error) {
	return nil, nil
}

func identity() config.IdentityConfig {
	return config.IdentityConfig{AdminEmails: []string{"root@example.com"}}
}

func TestResolvePrincipalCreatesOnFirstSight(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, identity())

	p := auth.Principal{Subject: "kp_1", Email: "alice@example.com", Username: "alice"}

	first, err := svc.ResolvePrincipal(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, access.RoleUser, first.Role)
	assert.Equal(t, "User", first.Name)

	second, err := svc.ResolvePrincipal(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, second.UserID)
	assert.Len(t, repo.users, 1)
}

func TestResolvePrincipalAdminAllowList(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, identity())

	actor, err := svc.ResolvePrincipal(context.Background(), auth.Principal{
		Subject:   "kp_root",
		Email:     "root@example.com",
		FirstName: "Root",
	})
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, actor.Role)
	assert.Equal(t, "Root", actor.Name)
}

func TestResolvePrincipalEscalatesExistingUser(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{
		ID: "u1", ExternalID: "kp_root", Email: "root@example.com",
		Role: access.RoleUser, IsActive: true,
	}
	svc := NewService(repo, identity())

	actor, err := svc.ResolvePrincipal(context.Background(), auth.Principal{
		Subject: "kp_root",
		Email:   "root@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, actor.Role)
	assert.Equal(t, access.RoleAdmin, repo.users["u1"].Role)
}

func TestResolvePrincipalRejectsDeactivated(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{ID: "u1", ExternalID: "kp_1", Email: "a@example.com", Role: access.RoleUser}
	svc := NewService(repo, identity())

	_, err := svc.ResolvePrincipal(context.Background(), auth.Principal{Subject: "kp_1", Email: "a@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestResolvePrincipalEmailTakenByOtherAccount(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{ID: "u1", ExternalID: "kp_old", Email: "a@example.com", IsActive: true}
	svc := NewService(repo, identity())

	_, err := svc.ResolvePrincipal(context.Background(), auth.Principal{Subject: "kp_new", Email: "a@example.com"})
	assert.ErrorIs(t, err, core.ErrConflict)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{ID: "u1", Email: "a@example.com", IsActive: true}
	repo.counts["u1"] = ContentCounts{Questions: 2, Answers: 5}
	svc := NewService(repo, identity())

	bio := "  Gopher  "
	site := "https://example.com"
	profile, err := svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{
		Bio:         &bio,
		Website:     &site,
		WatchedTags: []string{"Go", " go ", "Postgres", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "Gopher", profile.User.Bio)
	assert.Equal(t, core.StringList{"go", "postgres"}, profile.User.WatchedTags)
	assert.Equal(t, 5, profile.Counts.Answers)

	bad := "ftp://example.com"
	_, err = svc.UpdateProfile(context.Background(), "u1", UpdateProfileRequest{Website: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.UpdateProfile(context.Background(), "", UpdateProfileRequest{})
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestGetPublicProfileHidesInactive(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{ID: "u1", Email: "a@example.com", IsActive: false}
	svc := NewService(repo, identity())

	_, err := svc.GetPublicProfile(context.Background(), "u1", core.NewPage(1, 10, 10), core.NewPage(1, 10, 10))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateUserRole(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{ID: "u1", Role: access.RoleUser, IsActive: true}
	repo.users["admin"] = &User{ID: "admin", Role: access.RoleAdmin, IsActive: true}
	svc := NewService(repo, identity())
	admin := access.Actor{UserID: "admin", Role: access.RoleAdmin}

	u, err := svc.UpdateUserRole(context.Background(), admin, "u1", "guest")
	require.NoError(t, err)
	assert.Equal(t, access.RoleGuest, u.Role)

	_, err = svc.UpdateUserRole(context.Background(), admin, "u1", "owner")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.UpdateUserRole(context.Background(), admin, "admin", "user")
	assert.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.UpdateUserRole(context.Background(), admin, "missing", "user")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestHandlerGetMe(t *testing.T) {
	repo := newFakeRepo()
	repo.users["u1"] = &User{ID: "u1", Email: "a@example.com", FirstName: "Ada", IsActive: true}
	repo.counts["u1"] = ContentCounts{Questions: 1}
	h := NewHandler(NewService(repo, identity()))

	asUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithActor(r.Context(), access.Actor{UserID: "u1", Role: access.RoleUser})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	h.RegisterRoutes(r, asUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data ProfileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ada", body.Data.FirstName)
	assert.Equal(t, "a@example.com", body.Data.Email)
	assert.Equal(t, 1, body.Data.QuestionCount)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "a@example.com")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(`{"website":"nope"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

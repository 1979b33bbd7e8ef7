// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
)

const (
	profilePageSize = 10
	adminPageSize   = 20
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Put("/me", h.UpdateMe)
		})

		r.Get("/{userID}", h.GetPublicProfile)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, ToProfileResponse(profile, true))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, ToProfileResponse(profile, true))
}

// GetPublicProfile is readable by anyone. question_page and answer_page
// page the two content lists independently.
func (h *Handler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	limit := core.QueryInt(r, "limit", profilePageSize)

	questionPage := core.NewPage(core.QueryInt(r, "question_page", 1), limit, profilePageSize)
	answerPage := core.NewPage(core.QueryInt(r, "answer_page", 1), limit, profilePageSize)

	profile, err := h.service.GetPublicProfile(r.Context(), id, questionPage, answerPage)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, ToPublicProfileResponse(profile))
}

// RegisterAdminRoutes registers user management under an already guarded
// admin router.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Put("/{userID}/role", h.UpdateUserRole)
	})
}

// ListUsers returns a paginated list of users with optional filtering.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:   core.PageFromQuery(r, adminPageSize),
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, UserListResponse{
		Users:      ToUserListItems(users),
		Pagination: core.NewPagination(params.Page, total),
	})
}

// UpdateUserRole changes a user's role (admin only).
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor, _ := middleware.GetActor(r.Context())
	u, err := h.service.UpdateUserRole(r.Context(), actor, userID, req.Role)
	if err != nil {
		core.Fail(w, err, "user")
		return
	}

	core.OK(w, ToUserListItems([]User{*u})[0])
}

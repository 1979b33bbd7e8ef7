// AngelaMos | 2026
// handler.go

package question

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/stackit/internal/access"
	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
	"github.com/carterperez-dev/stackit/internal/vote"
)

type Handler struct {
	service   *Service
	votes     *vote.Handler
	validator *validator.Validate
}

func NewHandler(service *Service, votes *vote.Handler) *Handler {
	return &Handler{
		service:   service,
		votes:     votes,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router, g middleware.Guards) {
	r.Route("/questions", func(r chi.Router) {
		r.With(g.MaybeAuth()).Get("/", h.List)
		r.With(g.MaybeAuth()).Get("/{questionID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(g.Auth())

			r.With(middleware.RequirePermission(access.PermPost), g.Post()).Post("/", h.Create)
			r.Delete("/{questionID}", h.Delete)

			if h.votes != nil {
				r.With(middleware.RequirePermission(access.PermVote), g.Vote()).
					Post("/{questionID}/vote", h.votes.Cast(vote.KindQuestion, "questionID"))
			}
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := ListParams{
		Tags:       ParseTags(query.Get("tags")),
		Search:     query.Get("search"),
		Unanswered: core.QueryBool(r, "unanswered"),
		Sort:       ParseSort(query.Get("sort_by")),
		Page:       core.PageFromQuery(r, core.DefaultPageSize),
	}

	items, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.Fail(w, err, "question")
		return
	}

	core.OK(w, ListResponse{
		Questions:  ToSummaryResponses(items),
		Pagination: core.NewPagination(params.Page, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "questionID")

	detail, err := h.service.Get(r.Context(), middleware.ActorOrGuest(r.Context()), id)
	if err != nil {
		core.Fail(w, err, "question")
		return
	}

	core.OK(w, ToDetailResponse(detail))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	summary, err := h.service.Create(r.Context(), middleware.ActorOrGuest(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "question")
		return
	}

	core.Created(w, ToSummaryResponse(summary))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "questionID")

	if err := h.service.Delete(r.Context(), middleware.ActorOrGuest(r.Context()), id); err != nil {
		core.Fail(w, err, "question")
		return
	}

	core.NoContent(w)
}

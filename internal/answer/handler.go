// AngelaMos | 2026
// handler.go

package answer

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
	r.Route("/answers", func(r chi.Router) {
		r.Use(g.Auth())

		r.With(middleware.RequirePermission(access.PermPost), g.Post()).Post("/", h.Create)
		r.Put("/{answerID}", h.Update)
		r.Delete("/{answerID}", h.Delete)
		r.Post("/{answerID}/accept", h.Accept)
		r.Delete("/{answerID}/accept", h.Unaccept)

		if h.votes != nil {
			r.With(middleware.RequirePermission(access.PermVote), g.Vote()).
				Post("/{answerID}/vote", h.votes.Cast(vote.KindAnswer, "answerID"))
		}
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.service.Create(r.Context(), middleware.ActorOrGuest(r.Context()), req)
	if err != nil {
		core.Fail(w, err, "answer")
		return
	}

	core.Created(w, ToResponse(view))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if !h.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "answerID")
	view, err := h.service.Update(r.Context(), middleware.ActorOrGuest(r.Context()), id, req)
	if err != nil {
		core.Fail(w, err, "answer")
		return
	}

	core.OK(w, ToResponse(view))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "answerID")

	if err := h.service.Delete(r.Context(), middleware.ActorOrGuest(r.Context()), id); err != nil {
		core.Fail(w, err, "answer")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "answerID")

	res, err := h.service.Accept(r.Context(), middleware.ActorOrGuest(r.Context()), id)
	if err != nil {
		core.Fail(w, err, "answer")
		return
	}

	core.OK(w, ToAcceptResponse(res))
}

func (h *Handler) Unaccept(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "answerID")

	res, err := h.service.Unaccept(r.Context(), middleware.ActorOrGuest(r.Context()), id)
	if err != nil {
		core.Fail(w, err, "answer")
		return
	}

	core.OK(w, ToAcceptResponse(res))
}

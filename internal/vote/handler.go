// AngelaMos | 2026
// handler.go

package vote

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
)

// CastRequest accepts the direction as vote_type, or as type for older
// clients of the answer endpoint.
type CastRequest struct {
	VoteType string `json:"vote_type"`
	Type     string `json:"type"`
}

func (r CastRequest) direction() string {
	if r.VoteType != "" {
		return r.VoteType
	}
	return r.Type
}

type CastResponse struct {
	VoteScore    int     `json:"vote_score"`
	UserVote     *string `json:"user_vote"`
	PreviousVote *string `json:"previous_vote"`
	Action       Action  `json:"action"`
}

func ToCastResponse(res *Result) CastResponse {
	return CastResponse{
		VoteScore:    res.Score,
		UserVote:     res.Vote.Ptr(),
		PreviousVote: res.Previous.Ptr(),
		Action:       res.Action,
	}
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Cast returns the handler for POST .../{idParam}/vote on kind.
func (h *Handler) Cast(kind Kind, idParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}

		actor := middleware.ActorOrGuest(r.Context())
		res, err := h.service.Cast(r.Context(), actor, kind, chi.URLParam(r, idParam), req.direction())
		if err != nil {
			core.Fail(w, err, string(kind))
			return
		}

		core.OK(w, ToCastResponse(res))
	}
}

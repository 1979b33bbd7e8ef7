// AngelaMos | 2026
// handler.go

package notification

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/carterperez-dev/stackit/internal/core"
	"github.com/carterperez-dev/stackit/internal/middleware"
)

const (
	listPageSize = 20

	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	streamReadLimit  = 512
)

type Handler struct {
	service  *Service
	streams  Subscriber
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler builds the notification handler. An empty allowedOrigins
// list keeps the websocket same-origin only; "*" accepts any origin.
func NewHandler(
	service *Service,
	streams Subscriber,
	logger *slog.Logger,
	allowedOrigins []string,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		service: service,
		streams: streams,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, "*") {
				return true
			}
			return slices.Contains(allowedOrigins, origin)
		}
	}

	return h
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/notifications", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Get("/unread-count", h.UnreadCount)
		r.Get("/stream", h.Stream)
		r.Put("/mark-all-read", h.MarkAllRead)
		r.Put("/{notificationID}/read", h.MarkRead)
		r.Delete("/{notificationID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromQuery(r, listPageSize)
	unreadOnly := core.QueryBool(r, "unread_only")

	result, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), unreadOnly, page)
	if err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.OK(w, ListResponse{
		Notifications: ToResponses(result.Items),
		UnreadCount:   result.UnreadCount,
		Pagination:    core.NewPagination(page, result.Total),
	})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.OK(w, UnreadCountResponse{UnreadCount: n})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")

	n, err := h.service.MarkRead(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.OK(w, ToResponse(n))
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.OK(w, MarkAllReadResponse{UpdatedCount: n})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")

	if err := h.service.Delete(r.Context(), id, middleware.GetUserID(r.Context())); err != nil {
		core.Fail(w, err, "notification")
		return
	}

	core.NoContent(w)
}

// Stream upgrades to a websocket and relays the caller's live
// notifications until either side goes away.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	stream, err := h.streams.Subscribe(ctx, userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	defer stream.Close() //nolint:errcheck // best-effort unsubscribe

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err, "user_id", userID)
		return
	}
	defer conn.Close() //nolint:errcheck // connection teardown

	h.logger.Debug("notification stream opened", "user_id", userID)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(streamReadLimit)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait)) //nolint:errcheck // deadline on live conn
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	messages := stream.Messages()
	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				_ = conn.WriteControl( //nolint:errcheck // best-effort close frame
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream ended"),
					time.Now().Add(streamWriteWait),
				)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait)) //nolint:errcheck // deadline on live conn
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}

package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/service"
	"go.uber.org/zap"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
)

// ChatHandler serves the per-assignment conversation between the sales
// person and the operations person.
type ChatHandler struct {
	chatService *service.ChatService
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewChatHandler creates a chat handler. Stream upgrades are accepted from
// the given origins; "*" accepts any.
func NewChatHandler(chatService *service.ChatService, allowedOrigins []string, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// List godoc
// @Summary Chat history of an assignment
// @Tags Chat
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Success 200 {array} domain.ChatMessageDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/chat [get]
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	messages, err := h.chatService.List(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// Send godoc
// @Summary Send a chat message
// @Description Only the two participants of the assignment can post. The other participant is notified.
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Param request body domain.SendChatMessageRequest true "Message"
// @Success 201 {object} domain.ChatMessageDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/chat [post]
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	var req domain.SendChatMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	msg, err := h.chatService.Send(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// UnreadCount godoc
// @Summary Unread chat messages for the caller
// @Tags Chat
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Success 200 {object} domain.UnreadCountDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/chat/unread [get]
func (h *ChatHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	count, err := h.chatService.UnreadCount(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusOK, count)
}

// MarkRead godoc
// @Summary Mark the counterpart's messages as read
// @Tags Chat
// @Produce json
// @Param id path string true "Assignment ID" format(uuid)
// @Success 200 {object} domain.UnreadCountDTO "Number of messages marked"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /assignments/{id}/chat/read [put]
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}
	n, err := h.chatService.MarkRead(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	respondJSON(w, http.StatusOK, domain.UnreadCountDTO{Count: int(n)})
}

// Stream godoc
// @Summary Live chat events
// @Description Upgrades to a websocket that carries message and read events for the assignment. Browsers pass the token as access_token.
// @Tags Chat
// @Param id path string true "Assignment ID" format(uuid)
// @Param access_token query string false "Bearer token for browser clients"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /assignments/{id}/chat/stream [get]
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "assignment")
	if !ok {
		return
	}

	// Subscribe before upgrading so access errors still get a JSON answer
	sub, err := h.chatService.Subscribe(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "assignment")
		return
	}
	defer sub.Unsubscribe()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("assignmentId", id.String()))
	log.Debug("chat stream opened")

	// The reader only services control frames and notices the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(chatPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(chatPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(chatPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			log.Debug("chat stream closed by client")
			return
		case event, open := <-sub.C:
			if !open {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(chatWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Debug("chat stream write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(chatWriteWait)); err != nil {
				return
			}
		}
	}
}

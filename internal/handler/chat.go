package handler

import (
	"net/http"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	mw "github.com/foodbridge-dev/foodbridge/internal/middleware"
	"github.com/foodbridge-dev/foodbridge/internal/utils"
)

type sendMessageRequest struct {
	Content string `validate:"required" json:"content"`
}

type messageSentResponse struct {
	Id domain.MsgId `json:"id"`
}

type conversationResponse struct {
	Messages []domain.Message `json:"messages"`
}

// GetConversation handles GET /v1/chat/{userId}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	otherId, err := pathId(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	messages, err := h.chat.Conversation(user.Id, otherId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	writeJSON(w, conversationResponse{Messages: messages})
}

// SendMessage handles POST /v1/chat/{userId}
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	otherId, err := pathId(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req sendMessageRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	id, err := h.chat.Send(user.Id, otherId, req.Content)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, messageSentResponse{Id: id})
}

// DeleteConversation handles DELETE /v1/chat/{userId}
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	otherId, err := pathId(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.chat.DeleteConversation(user.Id, otherId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Conversation deleted"))
}

// WatchConversation handles GET /v1/chat/{userId}/watch (SSE)
func (h *Handler) WatchConversation(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	otherId, err := pathId(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	for messages := range h.chat.WatchConversation(r.Context(), user.Id, otherId) {
		if messages == nil {
			messages = []domain.Message{}
		}
		if err := writeSSE(w, conversationResponse{Messages: messages}); err != nil {
			return
		}
	}
}

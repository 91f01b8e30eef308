package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/utils"
)

type usersResponse struct {
	Users []domain.User `json:"users"`
}

type blockToggleResponse struct {
	Blocked bool `json:"blocked"`
}

// PendingUsers handles GET /v1/admin/users/pending
func (h *Handler) PendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.moderation.PendingUsers()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	writeJSON(w, usersResponse{Users: users})
}

// AllUsers handles GET /v1/admin/users
func (h *Handler) AllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.moderation.AllUsers()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	writeJSON(w, usersResponse{Users: users})
}

// ApproveUser handles POST /v1/admin/users/{userId}/approve
func (h *Handler) ApproveUser(w http.ResponseWriter, r *http.Request) {
	userId, err := pathId(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.moderation.ApproveUser(userId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("User approved"))
}

// ToggleBlockUser handles POST /v1/admin/users/{userId}/block
func (h *Handler) ToggleBlockUser(w http.ResponseWriter, r *http.Request) {
	userId, err := pathId(r, "userId")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	blocked, err := h.moderation.ToggleBlock(userId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, blockToggleResponse{Blocked: blocked})
}

// WatchPendingUsers handles GET /v1/admin/users/pending/watch (SSE)
func (h *Handler) WatchPendingUsers(w http.ResponseWriter, r *http.Request) {
	streamUsers(w, h.moderation.WatchPendingUsers(r.Context()))
}

// WatchAllUsers handles GET /v1/admin/users/watch (SSE)
func (h *Handler) WatchAllUsers(w http.ResponseWriter, r *http.Request) {
	streamUsers(w, h.moderation.WatchAllUsers(r.Context()))
}

func streamUsers(w http.ResponseWriter, updates <-chan []domain.User) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	for users := range updates {
		if users == nil {
			users = []domain.User{}
		}
		if err := writeSSE(w, usersResponse{Users: users}); err != nil {
			return
		}
	}
}

func pathId(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

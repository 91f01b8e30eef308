package handler

import (
	"net/http"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	mw "github.com/foodbridge-dev/foodbridge/internal/middleware"
	"github.com/foodbridge-dev/foodbridge/internal/utils"
)

type postRequest struct {
	FoodName   string `validate:"required" json:"food_name"`
	Quantity   string `validate:"required" json:"quantity"`
	ExpiryTime string `validate:"required" json:"expiry_time"`
	Location   string `validate:"required" json:"location"`
	ImageRef   string `json:"image_ref,omitempty"`
}

type postCreatedResponse struct {
	Id domain.PostId `json:"id"`
}

type postsResponse struct {
	Posts []domain.FoodPost `json:"posts"`
}

// CreatePost handles POST /v1/posts (donors only)
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user.Role != domain.RoleDonor {
		http.Error(w, "Only donors can create posts", http.StatusForbidden)
		return
	}

	var req postRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	id, err := h.posts.Add(domain.FoodPost{
		DonorId:    user.Id,
		FoodName:   req.FoodName,
		Quantity:   req.Quantity,
		ExpiryTime: req.ExpiryTime,
		Location:   req.Location,
		ImageRef:   req.ImageRef,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, postCreatedResponse{Id: id})
}

// GetPost handles GET /v1/posts/{postId}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postId, err := pathId(r, "postId")
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := h.posts.Get(postId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, post)
}

// UpdatePost handles PUT /v1/posts/{postId}
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	postId, err := pathId(r, "postId")
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var req postRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	// Status is not editable here; it moves only through the request
	// workflow and the delivered transition.
	err = h.posts.Update(user.Id, domain.FoodPost{
		Id:         postId,
		FoodName:   req.FoodName,
		Quantity:   req.Quantity,
		ExpiryTime: req.ExpiryTime,
		Location:   req.Location,
		ImageRef:   req.ImageRef,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Post updated"))
}

// MarkDelivered handles POST /v1/posts/{postId}/delivered
func (h *Handler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	postId, err := pathId(r, "postId")
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.posts.MarkDelivered(user.Id, postId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Post marked as delivered"))
}

// DeletePost handles DELETE /v1/posts/{postId}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	postId, err := pathId(r, "postId")
	if err != nil {
		http.Error(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.posts.Delete(user.Id, postId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Post deleted"))
}

// AvailablePosts handles GET /v1/posts/available
func (h *Handler) AvailablePosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Available()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if posts == nil {
		posts = []domain.FoodPost{}
	}
	writeJSON(w, postsResponse{Posts: posts})
}

// MyPosts handles GET /v1/posts (the donor's own listings)
func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)

	posts, err := h.posts.ByDonor(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if posts == nil {
		posts = []domain.FoodPost{}
	}
	writeJSON(w, postsResponse{Posts: posts})
}

// WatchAvailablePosts handles GET /v1/posts/available/watch (SSE)
func (h *Handler) WatchAvailablePosts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	for posts := range h.posts.WatchAvailable(r.Context()) {
		if posts == nil {
			posts = []domain.FoodPost{}
		}
		if err := writeSSE(w, postsResponse{Posts: posts}); err != nil {
			return
		}
	}
}

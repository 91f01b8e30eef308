package handler

import (
	"net/http"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	mw "github.com/foodbridge-dev/foodbridge/internal/middleware"
	"github.com/foodbridge-dev/foodbridge/internal/utils"
)

type claimRequest struct {
	PostId domain.PostId `validate:"required" json:"post_id"`
}

type claimResponse struct {
	Id domain.RequestId `json:"id"`
}

type statusUpdateRequest struct {
	Status string `validate:"required" json:"status"`
}

type requestsResponse struct {
	Requests []domain.DonationRequest `json:"requests"`
}

// CreateRequest handles POST /v1/requests (receivers claiming a post)
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user.Role != domain.RoleReceiver {
		http.Error(w, "Only receivers can claim posts", http.StatusForbidden)
		return
	}

	var req claimRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	id, err := h.requests.Claim(req.PostId, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, claimResponse{Id: id})
}

// UpdateRequestStatus handles POST /v1/requests/{requestId}/status
func (h *Handler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	requestId, err := pathId(r, "requestId")
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	var req statusUpdateRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.requests.UpdateStatus(user.Id, requestId, domain.RequestStatus(req.Status)); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Request updated"))
}

// DeleteRequest handles DELETE /v1/requests/{requestId}
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	requestId, err := pathId(r, "requestId")
	if err != nil {
		http.Error(w, "Invalid request ID", http.StatusBadRequest)
		return
	}

	if err := h.requests.Delete(user.Id, requestId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Request deleted"))
}

// IncomingRequests handles GET /v1/requests/incoming (requests on the donor's posts)
func (h *Handler) IncomingRequests(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)

	requests, err := h.requests.ByDonor(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if requests == nil {
		requests = []domain.DonationRequest{}
	}
	writeJSON(w, requestsResponse{Requests: requests})
}

// OutgoingRequests handles GET /v1/requests/outgoing (the receiver's own claims)
func (h *Handler) OutgoingRequests(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)

	requests, err := h.requests.ByReceiver(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if requests == nil {
		requests = []domain.DonationRequest{}
	}
	writeJSON(w, requestsResponse{Requests: requests})
}

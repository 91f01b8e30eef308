package service

import (
	"net/http"
	"time"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/logger"
)

type RequestService interface {
	Claim(postId domain.PostId, receiverId domain.UserId) (domain.RequestId, error)
	Get(id domain.RequestId) (domain.DonationRequest, error)
	UpdateStatus(actor domain.UserId, id domain.RequestId, newStatus domain.RequestStatus) error
	Delete(actor domain.UserId, id domain.RequestId) error
	ByDonor(donorId domain.UserId) ([]domain.DonationRequest, error)
	ByReceiver(receiverId domain.UserId) ([]domain.DonationRequest, error)
}

type Request struct {
	storage RequestStorage
}

type RequestStorage interface {
	CreateRequest(req domain.DonationRequest) (domain.RequestId, error)
	Request(id domain.RequestId) (domain.DonationRequest, error)
	ResolveRequest(id domain.RequestId, newStatus domain.RequestStatus) error
	DeletePendingRequest(id domain.RequestId) error
	HasPendingRequest(postId domain.PostId, receiverId domain.UserId) (bool, error)
	RequestsByDonor(donorId domain.UserId) ([]domain.DonationRequest, error)
	RequestsByReceiver(receiverId domain.UserId) ([]domain.DonationRequest, error)
	Post(id domain.PostId) (domain.FoodPost, error)
	IsUserBlocked(id domain.UserId) (bool, error)
}

func NewRequest(storage RequestStorage) *Request {
	return &Request{storage}
}

// Claim creates a PENDING request for a post. The post must still be
// AVAILABLE and unexpired, the receiver must not be the donor or already have
// a pending claim on it, and neither party may be blocked.
func (r *Request) Claim(postId domain.PostId, receiverId domain.UserId) (domain.RequestId, error) {
	post, err := r.storage.Post(postId)
	if err != nil {
		return 0, err
	}
	if !post.AvailableAt(time.Now().UTC()) {
		return 0, errors.InvalidTransition("Post is no longer available")
	}
	if post.DonorId == receiverId {
		return 0, &errors.ErrorWithStatusCode{Message: "Cannot claim your own post", StatusCode: http.StatusBadRequest}
	}
	if err := r.ensureNotBlocked(post.DonorId, receiverId); err != nil {
		return 0, err
	}

	duplicate, err := r.storage.HasPendingRequest(postId, receiverId)
	if err != nil {
		return 0, err
	}
	if duplicate {
		return 0, errors.InvalidTransition("You already have a pending request for this post")
	}

	id, err := r.storage.CreateRequest(domain.DonationRequest{
		PostId:     postId,
		ReceiverId: receiverId,
		DonorId:    post.DonorId,
	})
	if err != nil {
		return 0, err
	}
	logger.Log.Info("donation request created", "request_id", id, "post_id", postId, "receiver_id", receiverId)
	return id, nil
}

func (r *Request) Get(id domain.RequestId) (domain.DonationRequest, error) {
	return r.storage.Request(id)
}

// UpdateStatus resolves a PENDING request. Only the donor who owns the
// request may act on it, only APPROVED and REJECTED are reachable, and
// terminal requests stay as they are. Approval marks the post DONATED in the
// same storage transaction.
func (r *Request) UpdateStatus(actor domain.UserId, id domain.RequestId, newStatus domain.RequestStatus) error {
	if !newStatus.Terminal() {
		return errors.InvalidTransition("Request status can only move to APPROVED or REJECTED")
	}

	req, err := r.storage.Request(id)
	if err != nil {
		return err
	}
	if req.DonorId != actor {
		return &errors.ErrorWithStatusCode{Message: "Request belongs to another donor", StatusCode: http.StatusForbidden}
	}
	if req.Status.Terminal() {
		return errors.InvalidTransition("Request already resolved")
	}
	if newStatus == domain.RequestApproved {
		if err := r.ensureNotBlocked(req.DonorId, req.ReceiverId); err != nil {
			return err
		}
	}

	if err := r.storage.ResolveRequest(id, newStatus); err != nil {
		return err
	}
	logger.Log.Info("donation request resolved", "request_id", id, "status", newStatus)
	return nil
}

// Delete removes the receiver's own request while it is still PENDING.
// Resolved requests are kept as history; deleting one is a silent no-op.
func (r *Request) Delete(actor domain.UserId, id domain.RequestId) error {
	req, err := r.storage.Request(id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if req.ReceiverId != actor {
		return &errors.ErrorWithStatusCode{Message: "Request belongs to another receiver", StatusCode: http.StatusForbidden}
	}
	if req.Status.Terminal() {
		return nil
	}
	return r.storage.DeletePendingRequest(id)
}

func (r *Request) ByDonor(donorId domain.UserId) ([]domain.DonationRequest, error) {
	return r.storage.RequestsByDonor(donorId)
}

func (r *Request) ByReceiver(receiverId domain.UserId) ([]domain.DonationRequest, error) {
	return r.storage.RequestsByReceiver(receiverId)
}

// ensureNotBlocked rejects the operation when either participant is blocked.
// Checked here at the service boundary, not just hidden by clients.
func (r *Request) ensureNotBlocked(userIds ...domain.UserId) error {
	for _, id := range userIds {
		blocked, err := r.storage.IsUserBlocked(id)
		if err != nil {
			return err
		}
		if blocked {
			return errors.Blocked()
		}
	}
	return nil
}

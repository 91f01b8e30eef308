package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	internal_errors "github.com/foodbridge-dev/foodbridge/internal/errors"
)

func TestCreateRequestHandler(t *testing.T) {
	h, mocks := newTestHandler()

	t.Run("Receiver claims a post", func(t *testing.T) {
		// Arrange
		mocks.requests.ClaimFunc = func(postId domain.PostId, receiverId domain.UserId) (domain.RequestId, error) {
			assert.Equal(t, domain.PostId(10), postId)
			assert.Equal(t, testReceiver.Id, receiverId)
			return 5, nil
		}
		defer func() { mocks.requests.ClaimFunc = nil }()

		req := asUser(createRequest(t, "POST", "/v1/requests", []byte(`{"post_id":10}`)), testReceiver)
		rec := httptest.NewRecorder()

		// Act
		h.CreateRequest(rec, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp claimResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, domain.RequestId(5), resp.Id)
	})

	t.Run("Donor cannot claim", func(t *testing.T) {
		req := asUser(createRequest(t, "POST", "/v1/requests", []byte(`{"post_id":10}`)), testDonor)
		rec := httptest.NewRecorder()

		h.CreateRequest(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Duplicate claim surfaces 409", func(t *testing.T) {
		// Arrange
		mocks.requests.ClaimFunc = func(postId domain.PostId, receiverId domain.UserId) (domain.RequestId, error) {
			return 0, internal_errors.InvalidTransition("You already have a pending request for this post")
		}
		defer func() { mocks.requests.ClaimFunc = nil }()

		req := asUser(createRequest(t, "POST", "/v1/requests", []byte(`{"post_id":10}`)), testReceiver)
		rec := httptest.NewRecorder()

		// Act
		h.CreateRequest(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestUpdateRequestStatusHandler(t *testing.T) {
	h, mocks := newTestHandler()

	t.Run("Donor approves", func(t *testing.T) {
		// Arrange
		called := false
		mocks.requests.UpdateStatusFunc = func(actor domain.UserId, id domain.RequestId, newStatus domain.RequestStatus) error {
			called = true
			assert.Equal(t, testDonor.Id, actor)
			assert.Equal(t, domain.RequestId(5), id)
			assert.Equal(t, domain.RequestApproved, newStatus)
			return nil
		}
		defer func() { mocks.requests.UpdateStatusFunc = nil }()

		req := withVars(asUser(createRequest(t, "POST", "/v1/requests/5/status", []byte(`{"status":"APPROVED"}`)), testDonor), map[string]string{"requestId": "5"})
		rec := httptest.NewRecorder()

		// Act
		h.UpdateRequestStatus(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, called)
	})

	t.Run("Already resolved surfaces 409", func(t *testing.T) {
		// Arrange
		mocks.requests.UpdateStatusFunc = func(actor domain.UserId, id domain.RequestId, newStatus domain.RequestStatus) error {
			return internal_errors.InvalidTransition("Request already resolved")
		}
		defer func() { mocks.requests.UpdateStatusFunc = nil }()

		req := withVars(asUser(createRequest(t, "POST", "/v1/requests/5/status", []byte(`{"status":"REJECTED"}`)), testDonor), map[string]string{"requestId": "5"})
		rec := httptest.NewRecorder()

		// Act
		h.UpdateRequestStatus(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDeleteRequestHandler(t *testing.T) {
	h, mocks := newTestHandler()

	called := false
	mocks.requests.DeleteFunc = func(actor domain.UserId, id domain.RequestId) error {
		called = true
		assert.Equal(t, testReceiver.Id, actor)
		return nil
	}

	req := withVars(asUser(createRequest(t, "DELETE", "/v1/requests/5", nil), testReceiver), map[string]string{"requestId": "5"})
	rec := httptest.NewRecorder()

	h.DeleteRequest(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequestListHandlers(t *testing.T) {
	h, mocks := newTestHandler()

	t.Run("Incoming", func(t *testing.T) {
		mocks.requests.ByDonorFunc = func(donorId domain.UserId) ([]domain.DonationRequest, error) {
			assert.Equal(t, testDonor.Id, donorId)
			return []domain.DonationRequest{{Id: 5, Status: domain.RequestPending}}, nil
		}
		defer func() { mocks.requests.ByDonorFunc = nil }()

		req := asUser(createRequest(t, "GET", "/v1/requests/incoming", nil), testDonor)
		rec := httptest.NewRecorder()

		h.IncomingRequests(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp requestsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Requests, 1)
	})

	t.Run("Outgoing empty is a JSON array", func(t *testing.T) {
		req := asUser(createRequest(t, "GET", "/v1/requests/outgoing", nil), testReceiver)
		rec := httptest.NewRecorder()

		h.OutgoingRequests(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"requests":[]}`, rec.Body.String())
	})
}

package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	internal_errors "github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/live"
)

// =========================================================================
// Public Methods (satisfy the service storage interfaces)
// =========================================================================

// CreateRequest inserts a new donation request in PENDING state.
func (s *Storage) CreateRequest(req domain.DonationRequest) (domain.RequestId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.RequestId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.createRequest(tx, req)
		return err
	})
	if err == nil {
		s.notify(live.TableRequests)
	}
	return id, err
}

// Request fetches a single donation request by id.
func (s *Storage) Request(id domain.RequestId) (domain.DonationRequest, error) {
	return s.request(s.db, id)
}

// ResolveRequest moves a PENDING request into a terminal state. When the new
// status is APPROVED, the referenced post is marked DONATED inside the same
// transaction, so a request can never be approved against a post that stays
// AVAILABLE.
func (s *Storage) ResolveRequest(id domain.RequestId, newStatus domain.RequestStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		postId, err := s.resolveRequest(tx, id, newStatus)
		if err != nil {
			return err
		}
		if newStatus == domain.RequestApproved {
			return s.setPostStatus(tx, postId, domain.PostDonated)
		}
		return nil
	})
	if err == nil {
		if newStatus == domain.RequestApproved {
			s.notify(live.TableRequests, live.TablePosts)
		} else {
			s.notify(live.TableRequests)
		}
	}
	return err
}

// DeletePendingRequest removes a request only while it is PENDING. Terminal
// requests are history and must stay untouched, so a miss is a silent no-op.
func (s *Storage) DeletePendingRequest(id domain.RequestId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM donation_requests WHERE id = $1 AND status = 'PENDING'", id)
		if err != nil {
			return fmt.Errorf("failed to delete pending request: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows for request deletion: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	if err == nil && deleted {
		s.notify(live.TableRequests)
	}
	return err
}

// HasPendingRequest reports whether the receiver already has a PENDING
// request on the given post.
func (s *Storage) HasPendingRequest(postId domain.PostId, receiverId domain.UserId) (bool, error) {
	return s.exists(s.db,
		"SELECT EXISTS(SELECT 1 FROM donation_requests WHERE post_id = $1 AND receiver_id = $2 AND status = 'PENDING')",
		postId, receiverId)
}

// RequestsByDonor returns every request targeting the donor's posts, newest first.
func (s *Storage) RequestsByDonor(donorId domain.UserId) ([]domain.DonationRequest, error) {
	return s.requests(s.db, "donor_id = $1", donorId)
}

// RequestsByReceiver returns every request the receiver has made, newest first.
func (s *Storage) RequestsByReceiver(receiverId domain.UserId) ([]domain.DonationRequest, error) {
	return s.requests(s.db, "receiver_id = $1", receiverId)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) createRequest(q Querier, req domain.DonationRequest) (domain.RequestId, error) {
	var id domain.RequestId
	err := q.QueryRow(`
		INSERT INTO donation_requests(post_id, receiver_id, donor_id, status)
		VALUES($1, $2, $3, 'PENDING') RETURNING id`,
		req.PostId, req.ReceiverId, req.DonorId,
	).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert donation request: %w", err)
	}
	return id, nil
}

func (s *Storage) request(q Querier, id domain.RequestId) (domain.DonationRequest, error) {
	var req domain.DonationRequest
	err := q.QueryRow(`
		SELECT id, post_id, receiver_id, donor_id, status, (requested_at AT TIME ZONE 'utc')
		FROM donation_requests WHERE id = $1`, id,
	).Scan(&req.Id, &req.PostId, &req.ReceiverId, &req.DonorId, &req.Status, &req.RequestedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DonationRequest{}, internal_errors.NotFound("Donation request not found")
		}
		return domain.DonationRequest{}, fmt.Errorf("failed to query donation request: %w", err)
	}
	return req, nil
}

// resolveRequest flips a PENDING request to newStatus and returns the post id
// it references. The status guard in the WHERE clause makes terminal states
// immutable even under concurrent resolution attempts.
func (s *Storage) resolveRequest(q Querier, id domain.RequestId, newStatus domain.RequestStatus) (domain.PostId, error) {
	var postId domain.PostId
	err := q.QueryRow(`
		UPDATE donation_requests SET status = $1
		WHERE id = $2 AND status = 'PENDING'
		RETURNING post_id`,
		newStatus, id,
	).Scan(&postId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the request does not exist or it already left PENDING.
			if _, reqErr := s.request(q, id); internal_errors.IsNotFound(reqErr) {
				return -1, reqErr
			}
			return -1, internal_errors.InvalidTransition("Request already resolved")
		}
		return -1, fmt.Errorf("failed to resolve donation request: %w", err)
	}
	return postId, nil
}

func (s *Storage) requests(q Querier, where string, args ...interface{}) ([]domain.DonationRequest, error) {
	rows, err := q.Query(`
		SELECT id, post_id, receiver_id, donor_id, status, (requested_at AT TIME ZONE 'utc')
		FROM donation_requests WHERE `+where+` ORDER BY requested_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query donation requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.DonationRequest
	for rows.Next() {
		var req domain.DonationRequest
		if err := rows.Scan(&req.Id, &req.PostId, &req.ReceiverId, &req.DonorId, &req.Status, &req.RequestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan donation request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donation requests: %w", err)
	}
	return requests, nil
}

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

// CreatePost inserts a new food post and returns its id. Status and creation
// time are assigned here, not taken from the caller.
func (s *Storage) CreatePost(post domain.FoodPost) (domain.PostId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.PostId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.createPost(tx, post)
		return err
	})
	if err == nil {
		s.notify(live.TablePosts)
	}
	return id, err
}

// Post fetches a single food post by id.
func (s *Storage) Post(id domain.PostId) (domain.FoodPost, error) {
	return s.post(s.db, id)
}

// UpdatePost replaces the editable fields of a post. Status is deliberately
// not written here: a donor edit carries the status it read, and writing it
// back could revert a concurrent approval. Status changes go through
// SetPostStatus and request resolution only.
func (s *Storage) UpdatePost(post domain.FoodPost) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.updatePost(tx, post)
	})
	if err == nil {
		s.notify(live.TablePosts)
	}
	return err
}

// SetPostStatus transitions a post's lifecycle status.
func (s *Storage) SetPostStatus(id domain.PostId, status domain.PostStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.setPostStatus(tx, id, status)
	})
	if err == nil {
		s.notify(live.TablePosts)
	}
	return err
}

// DeletePost removes a post. Requests referencing it are removed by the
// ON DELETE CASCADE constraint rather than left dangling.
func (s *Storage) DeletePost(id domain.PostId) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deletePost(tx, id)
	})
	if err == nil {
		s.notify(live.TablePosts, live.TableRequests)
	}
	return err
}

// AvailablePosts returns all posts with status AVAILABLE, newest first. The
// expiry deadline cannot be evaluated in SQL (free-form expiry strings), so
// time filtering happens at the service layer.
func (s *Storage) AvailablePosts() ([]domain.FoodPost, error) {
	return s.posts(s.db, "status = 'AVAILABLE'")
}

// PostsByDonor returns every post owned by the given donor, newest first.
func (s *Storage) PostsByDonor(donorId domain.UserId) ([]domain.FoodPost, error) {
	return s.posts(s.db, "donor_id = $1", donorId)
}

// =========================================================================
// Internal Methods (Core Database Logic)
// =========================================================================

func (s *Storage) createPost(q Querier, post domain.FoodPost) (domain.PostId, error) {
	var id domain.PostId
	err := q.QueryRow(`
		INSERT INTO food_posts(donor_id, food_name, quantity, expiry_time, location, image_ref, status)
		VALUES($1, $2, $3, $4, $5, $6, 'AVAILABLE') RETURNING id`,
		post.DonorId, post.FoodName, post.Quantity, post.ExpiryTime, post.Location, post.ImageRef,
	).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert food post: %w", err)
	}
	return id, nil
}

func (s *Storage) post(q Querier, id domain.PostId) (domain.FoodPost, error) {
	var post domain.FoodPost
	err := q.QueryRow(`
		SELECT id, donor_id, food_name, quantity, expiry_time, location, image_ref, status, (created_at AT TIME ZONE 'utc')
		FROM food_posts WHERE id = $1`, id,
	).Scan(&post.Id, &post.DonorId, &post.FoodName, &post.Quantity, &post.ExpiryTime, &post.Location, &post.ImageRef, &post.Status, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.FoodPost{}, internal_errors.NotFound("Food post not found")
		}
		return domain.FoodPost{}, fmt.Errorf("failed to query food post: %w", err)
	}
	return post, nil
}

func (s *Storage) posts(q Querier, where string, args ...interface{}) ([]domain.FoodPost, error) {
	rows, err := q.Query(`
		SELECT id, donor_id, food_name, quantity, expiry_time, location, image_ref, status, (created_at AT TIME ZONE 'utc')
		FROM food_posts WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query food posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.FoodPost
	for rows.Next() {
		var post domain.FoodPost
		if err := rows.Scan(&post.Id, &post.DonorId, &post.FoodName, &post.Quantity, &post.ExpiryTime, &post.Location, &post.ImageRef, &post.Status, &post.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan food post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating food posts: %w", err)
	}
	return posts, nil
}

func (s *Storage) updatePost(q Querier, post domain.FoodPost) error {
	result, err := q.Exec(`
		UPDATE food_posts
		SET food_name = $1, quantity = $2, expiry_time = $3, location = $4, image_ref = $5
		WHERE id = $6`,
		post.FoodName, post.Quantity, post.ExpiryTime, post.Location, post.ImageRef, post.Id,
	)
	if err != nil {
		return fmt.Errorf("failed to update food post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for post update: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("Food post not found for update")
	}
	return nil
}

func (s *Storage) deletePost(q Querier, id domain.PostId) error {
	result, err := q.Exec("DELETE FROM food_posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete food post: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for post deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("Food post not found for deletion")
	}
	return nil
}

func (s *Storage) setPostStatus(q Querier, id domain.PostId, status domain.PostStatus) error {
	result, err := q.Exec("UPDATE food_posts SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return fmt.Errorf("failed to set post status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for status change: %w", err)
	}
	if rowsAffected == 0 {
		return internal_errors.NotFound("Food post not found for status change")
	}
	return nil
}

package service

import (
	"context"
	"net/http"
	"time"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	"github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/live"
	"github.com/foodbridge-dev/foodbridge/internal/logger"
)

type PostService interface {
	Add(post domain.FoodPost) (domain.PostId, error)
	Get(id domain.PostId) (domain.FoodPost, error)
	Update(actor domain.UserId, post domain.FoodPost) error
	MarkDelivered(actor domain.UserId, id domain.PostId) error
	Delete(actor domain.UserId, id domain.PostId) error
	Available() ([]domain.FoodPost, error)
	ByDonor(donorId domain.UserId) ([]domain.FoodPost, error)
	WatchAvailable(ctx context.Context) <-chan []domain.FoodPost
}

type Post struct {
	storage   PostStorage
	validator PostValidator
	broker    *live.Broker
}

type PostStorage interface {
	CreatePost(post domain.FoodPost) (domain.PostId, error)
	Post(id domain.PostId) (domain.FoodPost, error)
	UpdatePost(post domain.FoodPost) error
	SetPostStatus(id domain.PostId, status domain.PostStatus) error
	DeletePost(id domain.PostId) error
	AvailablePosts() ([]domain.FoodPost, error)
	PostsByDonor(donorId domain.UserId) ([]domain.FoodPost, error)
}

type PostValidator interface {
	Fields(foodName, quantity, location string) error
}

func NewPost(storage PostStorage, validator PostValidator, broker *live.Broker) *Post {
	return &Post{storage, validator, broker}
}

// Add creates a listing. Status is always AVAILABLE and the creation time is
// assigned by storage regardless of what the caller sends.
func (p *Post) Add(post domain.FoodPost) (domain.PostId, error) {
	if err := p.validator.Fields(post.FoodName, post.Quantity, post.Location); err != nil {
		return 0, err
	}
	id, err := p.storage.CreatePost(post)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("food post created", "post_id", id, "donor_id", post.DonorId)
	return id, nil
}

func (p *Post) Get(id domain.PostId) (domain.FoodPost, error) {
	return p.storage.Post(id)
}

// Update replaces the editable fields of a listing. Only the owning donor may
// edit, and an edit never moves the lifecycle status: storage ignores the
// status carried by the record, so a stale edit cannot undo a concurrent
// approval.
func (p *Post) Update(actor domain.UserId, post domain.FoodPost) error {
	if err := p.validator.Fields(post.FoodName, post.Quantity, post.Location); err != nil {
		return err
	}
	existing, err := p.storage.Post(post.Id)
	if err != nil {
		return err
	}
	if existing.DonorId != actor {
		return notYourPost()
	}
	post.DonorId = existing.DonorId
	post.CreatedAt = existing.CreatedAt
	return p.storage.UpdatePost(post)
}

// MarkDelivered transitions a post to DELIVERED. Valid from any prior status
// but normally follows DONATED, when the donor confirms handoff.
func (p *Post) MarkDelivered(actor domain.UserId, id domain.PostId) error {
	post, err := p.storage.Post(id)
	if err != nil {
		return err
	}
	if post.DonorId != actor {
		return notYourPost()
	}
	if err := p.storage.SetPostStatus(id, domain.PostDelivered); err != nil {
		return err
	}
	logger.Log.Info("food post delivered", "post_id", id)
	return nil
}

// Delete removes a post and, via the cascade in storage, any requests that
// reference it.
func (p *Post) Delete(actor domain.UserId, id domain.PostId) error {
	post, err := p.storage.Post(id)
	if err != nil {
		return err
	}
	if post.DonorId != actor {
		return notYourPost()
	}
	return p.storage.DeletePost(id)
}

// Available returns the receiver-facing list: AVAILABLE posts whose computed
// expiry deadline has not passed yet.
func (p *Post) Available() ([]domain.FoodPost, error) {
	posts, err := p.storage.AvailablePosts()
	if err != nil {
		return nil, err
	}
	return filterAvailable(posts, time.Now().UTC()), nil
}

func (p *Post) ByDonor(donorId domain.UserId) ([]domain.FoodPost, error) {
	return p.storage.PostsByDonor(donorId)
}

// WatchAvailable streams a fresh available list whenever the posts table
// changes. The channel closes when ctx is cancelled.
func (p *Post) WatchAvailable(ctx context.Context) <-chan []domain.FoodPost {
	out := make(chan []domain.FoodPost, 1)
	ticks := p.broker.Subscribe(ctx, live.TablePosts)

	go func() {
		defer close(out)
		emit := func() {
			posts, err := p.Available()
			if err != nil {
				logger.Log.Error("available posts live query failed", "error", err)
				return
			}
			select {
			case out <- posts:
			case <-ctx.Done():
			}
		}
		emit()
		for {
			select {
			case _, ok := <-ticks:
				if !ok {
					return
				}
				emit()
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func filterAvailable(posts []domain.FoodPost, now time.Time) []domain.FoodPost {
	visible := make([]domain.FoodPost, 0, len(posts))
	for _, post := range posts {
		if post.AvailableAt(now) {
			visible = append(visible, post)
		}
	}
	return visible
}

func notYourPost() error {
	return &errors.ErrorWithStatusCode{Message: "Post belongs to another donor", StatusCode: http.StatusForbidden}
}

package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/foodbridge-dev/foodbridge/internal/domain"
	internal_errors "github.com/foodbridge-dev/foodbridge/internal/errors"
	"github.com/foodbridge-dev/foodbridge/internal/live"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockPostStorage struct {
	CreatePostFunc     func(post domain.FoodPost) (domain.PostId, error)
	PostFunc           func(id domain.PostId) (domain.FoodPost, error)
	UpdatePostFunc     func(post domain.FoodPost) error
	SetPostStatusFunc  func(id domain.PostId, status domain.PostStatus) error
	DeletePostFunc     func(id domain.PostId) error
	AvailablePostsFunc func() ([]domain.FoodPost, error)
	PostsByDonorFunc   func(donorId domain.UserId) ([]domain.FoodPost, error)
}

func (m *MockPostStorage) CreatePost(post domain.FoodPost) (domain.PostId, error) {
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(post)
	}
	return 1, nil
}

func (m *MockPostStorage) Post(id domain.PostId) (domain.FoodPost, error) {
	if m.PostFunc != nil {
		return m.PostFunc(id)
	}
	return domain.FoodPost{}, internal_errors.NotFound("Post not found")
}

func (m *MockPostStorage) UpdatePost(post domain.FoodPost) error {
	if m.UpdatePostFunc != nil {
		return m.UpdatePostFunc(post)
	}
	return nil
}

func (m *MockPostStorage) SetPostStatus(id domain.PostId, status domain.PostStatus) error {
	if m.SetPostStatusFunc != nil {
		return m.SetPostStatusFunc(id, status)
	}
	return nil
}

func (m *MockPostStorage) DeletePost(id domain.PostId) error {
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(id)
	}
	return nil
}

func (m *MockPostStorage) AvailablePosts() ([]domain.FoodPost, error) {
	if m.AvailablePostsFunc != nil {
		return m.AvailablePostsFunc()
	}
	return nil, nil
}

func (m *MockPostStorage) PostsByDonor(donorId domain.UserId) ([]domain.FoodPost, error) {
	if m.PostsByDonorFunc != nil {
		return m.PostsByDonorFunc(donorId)
	}
	return nil, nil
}

type MockPostValidator struct {
	FieldsFunc func(foodName, quantity, location string) error
}

func (m *MockPostValidator) Fields(foodName, quantity, location string) error {
	if m.FieldsFunc != nil {
		return m.FieldsFunc(foodName, quantity, location)
	}
	return nil
}

// --- Tests ---

func TestAddPost(t *testing.T) {
	storage := &MockPostStorage{}
	validator := &MockPostValidator{}
	service := NewPost(storage, validator, live.NewBroker())

	t.Run("Successful add", func(t *testing.T) {
		// Arrange
		storage.CreatePostFunc = func(post domain.FoodPost) (domain.PostId, error) {
			assert.Equal(t, "Bread", post.FoodName)
			assert.Equal(t, domain.UserId(1), post.DonorId)
			return 10, nil
		}
		defer func() { storage.CreatePostFunc = nil }()

		// Act
		id, err := service.Add(domain.FoodPost{DonorId: 1, FoodName: "Bread", Quantity: "5 loaves", ExpiryTime: "48 hours", Location: "Main St"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, domain.PostId(10), id)
	})

	t.Run("Validator error", func(t *testing.T) {
		// Arrange
		mockError := errors.New("mock fields error")
		validator.FieldsFunc = func(foodName, quantity, location string) error { return mockError }
		defer func() { validator.FieldsFunc = nil }()

		// Act
		_, err := service.Add(domain.FoodPost{})

		// Assert
		require.Error(t, err)
		assert.True(t, errors.Is(err, mockError))
	})
}

func TestUpdatePost(t *testing.T) {
	storage := &MockPostStorage{}
	service := NewPost(storage, &MockPostValidator{}, live.NewBroker())

	existing := domain.FoodPost{
		Id:        10,
		DonorId:   1,
		FoodName:  "Bread",
		Quantity:  "5 loaves",
		Status:    domain.PostAvailable,
		CreatedAt: time.Now().UTC().Add(-1 * time.Hour),
	}

	t.Run("Owner updates fields, creation time preserved", func(t *testing.T) {
		// Arrange
		statusTouched := false
		storage.PostFunc = func(id domain.PostId) (domain.FoodPost, error) { return existing, nil }
		storage.UpdatePostFunc = func(post domain.FoodPost) error {
			assert.Equal(t, "Rice", post.FoodName)
			assert.Equal(t, existing.DonorId, post.DonorId)
			assert.Equal(t, existing.CreatedAt, post.CreatedAt)
			return nil
		}
		storage.SetPostStatusFunc = func(id domain.PostId, status domain.PostStatus) error {
			statusTouched = true
			return nil
		}
		defer func() {
			storage.PostFunc = nil
			storage.UpdatePostFunc = nil
			storage.SetPostStatusFunc = nil
		}()

		// Act
		updated := existing
		updated.FoodName = "Rice"
		updated.DonorId = 99 // caller-supplied owner must be ignored
		err := service.Update(1, updated)

		// Assert
		require.NoError(t, err)
		assert.False(t, statusTouched, "edits never drive status transitions")
	})

	t.Run("Non-owner is forbidden", func(t *testing.T) {
		// Arrange
		storage.PostFunc = func(id domain.PostId) (domain.FoodPost, error) { return existing, nil }
		defer func() { storage.PostFunc = nil }()

		// Act
		err := service.Update(42, existing)

		// Assert
		require.Error(t, err)
		var errWithStatus *internal_errors.ErrorWithStatusCode
		require.True(t, errors.As(err, &errWithStatus))
		assert.Equal(t, http.StatusForbidden, errWithStatus.StatusCode)
	})
}

func TestMarkDelivered(t *testing.T) {
	storage := &MockPostStorage{}
	service := NewPost(storage, &MockPostValidator{}, live.NewBroker())

	donated := domain.FoodPost{Id: 10, DonorId: 1, Status: domain.PostDonated}

	t.Run("Owner marks delivered", func(t *testing.T) {
		// Arrange
		storage.PostFunc = func(id domain.PostId) (domain.FoodPost, error) { return donated, nil }
		storage.SetPostStatusFunc = func(id domain.PostId, status domain.PostStatus) error {
			assert.Equal(t, domain.PostId(10), id)
			assert.Equal(t, domain.PostDelivered, status)
			return nil
		}
		defer func() {
			storage.PostFunc = nil
			storage.SetPostStatusFunc = nil
		}()

		// Act + Assert
		require.NoError(t, service.MarkDelivered(1, 10))
	})

	t.Run("Non-owner is forbidden", func(t *testing.T) {
		// Arrange
		storage.PostFunc = func(id domain.PostId) (domain.FoodPost, error) { return donated, nil }
		defer func() { storage.PostFunc = nil }()

		// Act + Assert
		require.Error(t, service.MarkDelivered(42, 10))
	})
}

func TestDeletePost(t *testing.T) {
	storage := &MockPostStorage{}
	service := NewPost(storage, &MockPostValidator{}, live.NewBroker())

	t.Run("Owner deletes", func(t *testing.T) {
		// Arrange
		deleted := false
		storage.PostFunc = func(id domain.PostId) (domain.FoodPost, error) {
			return domain.FoodPost{Id: 10, DonorId: 1}, nil
		}
		storage.DeletePostFunc = func(id domain.PostId) error {
			deleted = true
			return nil
		}
		defer func() {
			storage.PostFunc = nil
			storage.DeletePostFunc = nil
		}()

		// Act + Assert
		require.NoError(t, service.Delete(1, 10))
		assert.True(t, deleted)
	})

	t.Run("Missing post", func(t *testing.T) {
		err := service.Delete(1, 999)
		require.Error(t, err)
		assert.True(t, internal_errors.IsNotFound(err))
	})
}

func TestAvailable(t *testing.T) {
	storage := &MockPostStorage{}
	service := NewPost(storage, &MockPostValidator{}, live.NewBroker())

	now := time.Now().UTC()
	fresh := domain.FoodPost{Id: 1, Status: domain.PostAvailable, ExpiryTime: "48 hours", CreatedAt: now.Add(-1 * time.Hour)}
	expired := domain.FoodPost{Id: 2, Status: domain.PostAvailable, ExpiryTime: "2 hrs", CreatedAt: now.Add(-3 * time.Hour)}
	// No leading digits: defaults to a 24 hour shelf life
	freeForm := domain.FoodPost{Id: 3, Status: domain.PostAvailable, ExpiryTime: "best before tomorrow", CreatedAt: now.Add(-10 * time.Hour)}

	storage.AvailablePostsFunc = func() ([]domain.FoodPost, error) {
		return []domain.FoodPost{fresh, expired, freeForm}, nil
	}

	posts, err := service.Available()
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, domain.PostId(1), posts[0].Id)
	assert.Equal(t, domain.PostId(3), posts[1].Id)
}

func TestWatchAvailable(t *testing.T) {
	storage := &MockPostStorage{}
	broker := live.NewBroker()
	service := NewPost(storage, &MockPostValidator{}, broker)

	fresh := domain.FoodPost{Id: 1, Status: domain.PostAvailable, ExpiryTime: "48 hours", CreatedAt: time.Now().UTC()}
	storage.AvailablePostsFunc = func() ([]domain.FoodPost, error) { return []domain.FoodPost{fresh}, nil }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := service.WatchAvailable(ctx)

	// Initial snapshot arrives without any publish
	select {
	case posts := <-out:
		require.Len(t, posts, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for initial snapshot")
	}

	// A publish on the posts table triggers a fresh emit
	broker.Publish(live.TablePosts)
	select {
	case posts := <-out:
		require.Len(t, posts, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}

	// Cancellation closes the stream
	cancel()
	select {
	case _, ok := <-out:
		if ok {
			// one buffered emit may still be in flight; the next read must observe close
			_, ok = <-out
			assert.False(t, ok)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
}

package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-go/internal/logging"
	"newsletter-go/internal/models"
	"newsletter-go/internal/repository"
)

type failingRepository struct {
	calls int
	err   error
}

func (r *failingRepository) Insert(context.Context, *models.Subscription) error {
	r.calls++
	return r.err
}

func request(name, email string) models.SubscriptionRequest {
	return models.SubscriptionRequest{Name: &name, Email: &email}
}

func TestSubscribeStoresRecord(t *testing.T) {
	repo := repository.NewInMemorySubscriptionRepository()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewSubscriptionService(repo, logging.NewLogger("info", io.Discard), WithClock(func() time.Time { return fixed }))

	sub, err := svc.Subscribe(context.Background(), request("le guin", "ursula_le_guin@gmail.com"))
	require.NoError(t, err)

	stored := repo.List()
	require.Len(t, stored, 1)
	assert.Equal(t, *sub, stored[0])
	assert.Equal(t, fixed, stored[0].SubscribedAt)
}

func TestSubscribeDoesNotRetry(t *testing.T) {
	repo := &failingRepository{err: &repository.StorageError{Kind: repository.KindUnavailable, Op: "insert subscription", Err: errors.New("connection reset")}}
	svc := NewSubscriptionService(repo, logging.NewLogger("info", io.Discard))

	sub, err := svc.Subscribe(context.Background(), request("le guin", "ursula_le_guin@gmail.com"))
	assert.Nil(t, sub)
	assert.Equal(t, repository.KindUnavailable, repository.KindOf(err))
	assert.Equal(t, 1, repo.calls)
}

func TestSubscribeAssignsDistinctIDs(t *testing.T) {
	repo := repository.NewInMemorySubscriptionRepository()
	svc := NewSubscriptionService(repo, logging.NewLogger("info", io.Discard))

	first, err := svc.Subscribe(context.Background(), request("a", "same@example.com"))
	require.NoError(t, err)
	second, err := svc.Subscribe(context.Background(), request("a", "same@example.com"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, repo.Count())
}

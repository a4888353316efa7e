package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-go/internal/models"
)

func newSubscription() *models.Subscription {
	return &models.Subscription{
		ID:           uuid.New(),
		Email:        "ursula_le_guin@gmail.com",
		Name:         "le guin",
		SubscribedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInMemoryInsert(t *testing.T) {
	repo := NewInMemorySubscriptionRepository()
	sub := newSubscription()

	require.NoError(t, repo.Insert(context.Background(), sub))
	assert.Equal(t, 1, repo.Count())
	assert.Equal(t, []models.Subscription{*sub}, repo.List())
}

func TestInMemoryInsertDuplicateID(t *testing.T) {
	repo := NewInMemorySubscriptionRepository()
	sub := newSubscription()
	require.NoError(t, repo.Insert(context.Background(), sub))

	err := repo.Insert(context.Background(), sub)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSubscription))
	assert.Equal(t, KindConstraint, KindOf(err))
	assert.Equal(t, 1, repo.Count())
}

func TestInMemoryInsertSameEmailTwice(t *testing.T) {
	repo := NewInMemorySubscriptionRepository()

	require.NoError(t, repo.Insert(context.Background(), newSubscription()))
	require.NoError(t, repo.Insert(context.Background(), newSubscription()))
	assert.Equal(t, 2, repo.Count())
}

func TestInMemoryInsertCancelledContext(t *testing.T) {
	repo := NewInMemorySubscriptionRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Insert(ctx, newSubscription())
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.Zero(t, repo.Count())
}

var insertPattern = regexp.QuoteMeta("INSERT INTO subscriptions (id, email, name, subscribed_at)")

func TestPostgresInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sub := newSubscription()
	mock.ExpectExec(insertPattern).
		WithArgs(sub.ID.String(), sub.Email, sub.Name, sub.SubscribedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresSubscriptionRepository(db)
	require.NoError(t, repo.Insert(context.Background(), sub))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertClassifiesErrors(t *testing.T) {
	testCases := []struct {
		name      string
		dbErr     error
		kind      Kind
		duplicate bool
	}{
		{
			name:      "unique violation",
			dbErr:     &pq.Error{Code: UniqueViolationCode, Constraint: "subscriptions_pkey"},
			kind:      KindConstraint,
			duplicate: true,
		},
		{
			name:  "not null violation",
			dbErr: &pq.Error{Code: "23502"},
			kind:  KindConstraint,
		},
		{
			name:  "connection refused",
			dbErr: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			kind:  KindUnavailable,
		},
		{
			name:  "deadline",
			dbErr: context.DeadlineExceeded,
			kind:  KindUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(insertPattern).WillReturnError(tc.dbErr)

			err = NewPostgresSubscriptionRepository(db).Insert(context.Background(), newSubscription())
			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Equal(t, tc.duplicate, errors.Is(err, ErrDuplicateSubscription))
			assert.True(t, errors.Is(err, tc.dbErr))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

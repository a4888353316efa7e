package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/models"
)

// SubscriptionRepository is the persistence gateway for accepted submissions.
// Insert either stores the whole record or nothing.
type SubscriptionRepository interface {
	Insert(ctx context.Context, subscription *models.Subscription) error
}

// ErrDuplicateSubscription reports a uniqueness violation on insert.
var ErrDuplicateSubscription = errors.New("subscription already exists")

type Kind string

const (
	// KindConstraint covers integrity violations (unique, not-null, check).
	KindConstraint Kind = "constraint"
	// KindUnavailable covers everything else: connectivity, timeouts, cancellation.
	KindUnavailable Kind = "unavailable"
)

// StorageError is returned by every failed Insert.
type StorageError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// KindOf returns the storage kind of err, or "" if err is not a StorageError.
func KindOf(err error) Kind {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

type InMemorySubscriptionRepository struct {
	mu            sync.RWMutex
	subscriptions map[uuid.UUID]models.Subscription
	order         []uuid.UUID
	tracer        trace.Tracer
}

func NewInMemorySubscriptionRepository() *InMemorySubscriptionRepository {
	return &InMemorySubscriptionRepository{
		subscriptions: make(map[uuid.UUID]models.Subscription),
		tracer:        otel.Tracer("subscription-repository"),
	}
}

func (r *InMemorySubscriptionRepository) Insert(ctx context.Context, subscription *models.Subscription) error {
	_, span := r.tracer.Start(ctx, "subscription.repository.insert",
		trace.WithAttributes(
			attribute.String("subscription.id", subscription.ID.String()),
			attribute.String("operation", "database.write"),
			attribute.String("db.system", "memory"),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return &StorageError{Kind: KindUnavailable, Op: "insert subscription", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.subscriptions[subscription.ID]; exists {
		err := fmt.Errorf("id %s: %w", subscription.ID, ErrDuplicateSubscription)
		span.RecordError(err)
		return &StorageError{Kind: KindConstraint, Op: "insert subscription", Err: err}
	}

	r.subscriptions[subscription.ID] = *subscription
	r.order = append(r.order, subscription.ID)
	span.SetAttributes(attribute.Bool("success", true))
	return nil
}

// List returns copies of the stored records in insertion order.
func (r *InMemorySubscriptionRepository) List() []models.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Subscription, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.subscriptions[id])
	}
	return out
}

func (r *InMemorySubscriptionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.subscriptions)
}

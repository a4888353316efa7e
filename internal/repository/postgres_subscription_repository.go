package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/models"
)

const (
	// UniqueViolationCode is the SQLSTATE for a unique constraint violation.
	UniqueViolationCode = "23505"
	// IntegrityConstraintClass is the SQLSTATE class of every integrity violation.
	IntegrityConstraintClass = "23"
)

const insertSubscriptionSQL = `
	INSERT INTO subscriptions (id, email, name, subscribed_at)
	VALUES ($1, $2, $3, $4)
`

// PostgresSubscriptionRepository writes to the subscriptions table through a
// shared *sql.DB pool.
type PostgresSubscriptionRepository struct {
	db     *sql.DB
	tracer trace.Tracer
}

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)

func NewPostgresSubscriptionRepository(db *sql.DB) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{
		db:     db,
		tracer: otel.Tracer("postgres.repository"),
	}
}

func (r *PostgresSubscriptionRepository) Insert(ctx context.Context, subscription *models.Subscription) error {
	ctx, span := r.tracer.Start(ctx, "subscription.repository.insert",
		trace.WithAttributes(
			attribute.String("subscription.id", subscription.ID.String()),
			attribute.String("operation", "database.write"),
			attribute.String("db.system", "postgresql"),
		))
	defer span.End()

	_, err := r.db.ExecContext(ctx, insertSubscriptionSQL,
		subscription.ID, subscription.Email, subscription.Name, subscription.SubscribedAt)
	if err != nil {
		span.RecordError(err)
		return classify("insert subscription", err)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return nil
}

func classify(op string, err error) *StorageError {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == UniqueViolationCode {
			return &StorageError{
				Kind: KindConstraint,
				Op:   op,
				Err:  fmt.Errorf("%s: %w: %w", pqErr.Constraint, ErrDuplicateSubscription, err),
			}
		}
		if pqErr.Code.Class() == IntegrityConstraintClass {
			return &StorageError{Kind: KindConstraint, Op: op, Err: err}
		}
	}
	return &StorageError{Kind: KindUnavailable, Op: op, Err: err}
}

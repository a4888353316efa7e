package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/logging"
	"newsletter-go/internal/models"
	"newsletter-go/internal/repository"
)

type SubscriptionService struct {
	repo   repository.SubscriptionRepository
	logger *logging.ContextLogger
	tracer trace.Tracer
	now    func() time.Time
}

type Option func(*SubscriptionService)

// WithClock replaces time.Now as the source of submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *SubscriptionService) { s.now = now }
}

func NewSubscriptionService(repo repository.SubscriptionRepository, logger *logging.ContextLogger, opts ...Option) *SubscriptionService {
	s := &SubscriptionService{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("subscription-service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe stores a new record for req with one insert attempt. On error
// nothing was stored.
func (s *SubscriptionService) Subscribe(ctx context.Context, req models.SubscriptionRequest) (*models.Subscription, error) {
	subscription := models.NewSubscription(req, s.now)

	ctx, span := s.tracer.Start(ctx, "subscription.service.subscribe",
		trace.WithAttributes(
			attribute.String("subscription.id", subscription.ID.String()),
		))
	defer span.End()

	if err := s.repo.Insert(ctx, subscription); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.DebugWithTracing(ctx, "Stored subscription", logrus.Fields{
		"subscription_id": subscription.ID.String(),
	})
	span.SetAttributes(attribute.Bool("success", true))
	return subscription, nil
}

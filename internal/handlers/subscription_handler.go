package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsletter-go/internal/logging"
	"newsletter-go/internal/models"
	"newsletter-go/internal/repository"
	"newsletter-go/internal/service"
)

const (
	formContentType = "application/x-www-form-urlencoded"
	// MaxFormBytes bounds the intake body; larger payloads are rejected.
	MaxFormBytes = 16 << 10
)

var errUnsupportedContentType = errors.New("unsupported content type")

type SubscriptionHandler struct {
	service *service.SubscriptionService
	logger  *logging.ContextLogger
	tracer  trace.Tracer
}

func NewSubscriptionHandler(service *service.SubscriptionService, logger *logging.ContextLogger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		logger:  logger,
		tracer:  otel.Tracer("subscription-handler"),
	}
}

// Subscribe serves POST /subscriptions.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxFormBytes))
	if err != nil {
		h.logger.WarnWithTracing(c.Request.Context(), "Unreadable subscription body", err, logrus.Fields{
			"endpoint": "POST /subscriptions",
		})
		Render(c, OutcomeRejected)
		return
	}

	Render(c, h.Handle(c.Request.Context(), c.GetHeader("Content-Type"), body))
}

// Handle runs one submission through decode and store. contentType is the raw
// Content-Type header; anything but form-encoded, including no header, is
// rejected.
func (h *SubscriptionHandler) Handle(ctx context.Context, contentType string, body []byte) Outcome {
	ctx, span := h.tracer.Start(ctx, "subscription.handler.subscribe",
		trace.WithAttributes(attribute.String("operation", "http.subscribe")))
	defer span.End()

	outcome := h.handle(ctx, contentType, body)
	span.SetAttributes(attribute.String("outcome", outcome.String()))
	return outcome
}

func (h *SubscriptionHandler) handle(ctx context.Context, contentType string, body []byte) Outcome {
	if err := checkContentType(contentType); err != nil {
		h.logger.WarnWithTracing(ctx, "Rejected subscription request", err, logrus.Fields{
			"endpoint":     "POST /subscriptions",
			"content_type": contentType,
		})
		return OutcomeRejected
	}

	req, err := models.DecodeSubscriptionForm(body)
	if err != nil {
		h.logger.WarnWithTracing(ctx, "Rejected subscription request", err, logrus.Fields{
			"endpoint": "POST /subscriptions",
		})
		return OutcomeRejected
	}

	subscription, err := h.service.Subscribe(ctx, req)
	if err != nil {
		trace.SpanFromContext(ctx).RecordError(err)
		h.logger.ErrorWithTracing(ctx, "Failed to store subscription", err, logrus.Fields{
			"endpoint":     "POST /subscriptions",
			"storage_kind": string(repository.KindOf(err)),
		})
		return OutcomeStoreFailed
	}

	h.logger.InfoWithTracing(ctx, "New subscriber saved", logrus.Fields{
		"subscription_id": subscription.ID.String(),
		"endpoint":        "POST /subscriptions",
	})
	return OutcomeStored
}

func checkContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf("%w: missing Content-Type", errUnsupportedContentType)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: %v", errUnsupportedContentType, err)
	}
	if mediaType != formContentType {
		return fmt.Errorf("%w: %s", errUnsupportedContentType, mediaType)
	}
	return nil
}

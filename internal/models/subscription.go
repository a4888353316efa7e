package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionRequest is a decoded intake form. A nil field means the key was
// absent from the body; an empty string is a present but blank value.
type SubscriptionRequest struct {
	Email *string `form:"email" validate:"required"`
	Name  *string `form:"name" validate:"required"`
}

// Subscription is the persisted record of an accepted submission.
type Subscription struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// NewSubscription assigns a random (v4) id and a UTC submission time taken
// from now. The request must already have passed DecodeSubscriptionForm.
func NewSubscription(req SubscriptionRequest, now func() time.Time) *Subscription {
	return &Subscription{
		ID:           uuid.New(),
		Email:        deref(req.Email),
		Name:         deref(req.Name),
		SubscribedAt: now().UTC(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

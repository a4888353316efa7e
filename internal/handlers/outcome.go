package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Outcome is the terminal state of one request. Responses never carry a body.
type Outcome int

const (
	OutcomeStored Outcome = iota
	OutcomeRejected
	OutcomeStoreFailed
	OutcomeHealthy
)

func (o Outcome) StatusCode() int {
	switch o {
	case OutcomeStored, OutcomeHealthy:
		return http.StatusOK
	case OutcomeRejected:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeRejected:
		return "rejected"
	case OutcomeStoreFailed:
		return "store_failed"
	case OutcomeHealthy:
		return "healthy"
	default:
		return "unknown"
	}
}

// Render writes o as a status line with an explicit zero-length body.
func Render(c *gin.Context, o Outcome) {
	c.Header("Content-Length", "0")
	c.Status(o.StatusCode())
}

package handlers

import "github.com/gin-gonic/gin"

// HealthCheck answers liveness probes. It consults nothing and cannot fail.
func HealthCheck(c *gin.Context) {
	Render(c, OutcomeHealthy)
}

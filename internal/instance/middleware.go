package instance

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Repeated launches from a script or a stuck launcher must not flood the
// session queue.
const (
	activationRate  = 10
	activationBurst = 20
)

// throttle limits the route to a global request rate. All callers share one
// socket, so there is no per-client key.
func throttle(rps, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Package metrics exposes request and domain counters on /metrics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SuccessfulRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "successful_request",
			Help: "Total number of successful (2xx) HTTP requests",
		},
		[]string{"path"},
	)
	BadRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unsuccessful_request",
			Help: "Total number of unsuccessful (4xx/5xx) HTTP requests",
		},
		[]string{"path"},
	)
	FriendRequestsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friend_requests_sent",
			Help: "Total number of successfully sent friend requests",
		},
		[]string{"path"},
	)
	EventsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_created",
			Help: "Total number of events created",
		},
		[]string{"path"},
	)
)

// Init registers all counters with the default prometheus registry.
func Init() {
	prometheus.MustRegister(SuccessfulRequests)
	prometheus.MustRegister(BadRequests)
	prometheus.MustRegister(FriendRequestsSent)
	prometheus.MustRegister(EventsCreated)
}

// Middleware counts requests by outcome and route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if c.Writer.Status() < 400 {
			SuccessfulRequests.WithLabelValues(path).Inc()
		} else {
			BadRequests.WithLabelValues(path).Inc()
		}
	}
}

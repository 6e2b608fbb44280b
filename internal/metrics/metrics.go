package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JoinRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamdraw_join_requests_total",
		Help: "Join requests by result (initiated, not_found, invalid_state, conflict, gateway_error, error).",
	}, []string{"result"})

	CallbackOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamdraw_callback_outcomes_total",
		Help: "Payment callbacks by resolved outcome.",
	}, []string{"outcome"})

	Draws = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamdraw_draws_total",
		Help: "Lucky draws performed.",
	})
)

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

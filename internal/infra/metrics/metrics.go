package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the auth flows. Token failures are labelled by kind and
// reason so invalid-signature and expired can be told apart in dashboards
// even though callers see one message.
type Metrics struct {
	Logins         *prometheus.CounterVec
	Refreshes      *prometheus.CounterVec
	PasswordResets *prometheus.CounterVec
	TokenFailures  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_refreshes_total",
			Help: "Refresh-token rotations by result.",
		}, []string{"result"}),
		PasswordResets: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_password_resets_total",
			Help: "Password reset requests and confirmations by stage and result.",
		}, []string{"stage", "result"}),
		TokenFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_token_failures_total",
			Help: "Token verification failures by token kind and reason.",
		}, []string{"kind", "reason"}),
	}
}

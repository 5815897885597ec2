package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics owns its registry so that several servers (tests) can coexist in one process.
type metrics struct {
	registry     *prometheus.Registry
	chatReplies  *prometheus.CounterVec
	loginResults *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cpgshub",
			Name:      "chat_replies_total",
			Help:      "Chat replies by source.",
		}, []string{"source"}),
		loginResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cpgshub",
			Name:      "auth_logins_total",
			Help:      "Login attempts by portal and outcome.",
		}, []string{"portal", "outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.chatReplies,
		m.loginResults,
	)
	return m
}

func (m *metrics) observeChat(source string) {
	m.chatReplies.WithLabelValues(source).Inc()
}

func (m *metrics) observeLogin(portal string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.loginResults.WithLabelValues(portal, outcome).Inc()
}

func (m *metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

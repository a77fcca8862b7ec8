// Package metrics содержит счётчики Prometheus для слоя аутентификации.
// Наружу (в ответах) причины отказа не отдаются, здесь они видны оператору.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthRequestsTotal : результаты middleware по способу аутентификации
	AuthRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Authentication decisions by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	// APIKeyCacheLookupsTotal : попадания и промахи кэша API ключей
	APIKeyCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_key_cache_lookups_total",
			Help: "API key cache lookups by result",
		},
		[]string{"result"},
	)

	// TokenRevocationsTotal : исходы записи в blacklist
	TokenRevocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_revocations_total",
			Help: "Token revocations by result",
		},
		[]string{"result"},
	)

	// SessionStoreFailuresTotal : отказы хранилища, после которых запрос отклонён
	SessionStoreFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_failures_total",
			Help: "Session store failures that forced a fail-closed decision",
		},
		[]string{"operation"},
	)
)

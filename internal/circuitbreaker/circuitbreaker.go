package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	consecutiveFailuresToTrip = 5
	openTimeout               = 30 * time.Second
	countInterval             = time.Minute
)

// New returns a breaker that opens after five consecutive failures and allows
// a trial call after thirty seconds. isSuccessful may be nil; when set, errors it
// accepts do not count as failures.
func New[T any](name string, logger *zap.Logger, isSuccessful func(err error) bool) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](settings(name, logger, isSuccessful))
}

func settings(name string, logger *zap.Logger, isSuccessful func(err error) bool) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    countInterval,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailuresToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: isSuccessful,
	}
}

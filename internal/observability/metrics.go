package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	usersCreatedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "persistence",
		Name:      "users_created_total",
		Help:      "Number of users created since process start.",
	})
	exercisesPersistedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "persistence",
		Name:      "exercises_persisted_total",
		Help:      "Number of exercises persisted since process start.",
	})
	exercisePersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tracker",
		Subsystem: "persistence",
		Name:      "last_exercise_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exercise persisted to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(usersCreatedCounter, exercisesPersistedCounter, exercisePersistGauge)
}

// RecordUserCreated increments the user creation counter.
func RecordUserCreated() {
	usersCreatedCounter.Inc()
}

// RecordExercisePersisted bumps the exercise counter and the
// persistence watermark gauge.
func RecordExercisePersisted() {
	exercisesPersistedCounter.Inc()
	exercisePersistGauge.Set(float64(time.Now().Unix()))
}

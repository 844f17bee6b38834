package metrics

import "github.com/jackc/pgx/v5/pgxpool"

// RecordDBPoolMetrics snapshots the pgx pool counters into the connection
// gauge. The app bootstrap calls it on a ticker.
func RecordDBPoolMetrics(pool *pgxpool.Pool) {
	st := pool.Stat()
	DBPoolConnections.WithLabelValues("in_use").Set(float64(st.AcquiredConns()))
	DBPoolConnections.WithLabelValues("idle").Set(float64(st.IdleConns()))
	DBPoolConnections.WithLabelValues("max").Set(float64(st.MaxConns()))
}

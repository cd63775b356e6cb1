package api

import (
	"context"

	"github.com/soaringjerry/clima/internal/services"
)

// Store is everything the HTTP layer needs from persistence. It is satisfied
// by db.Store (SQLite or Postgres) and by MemoryStore.
type Store interface {
	services.AnalyticsStore
	services.SubmissionStore
	services.ExportStore
	Ping(ctx context.Context) error
}

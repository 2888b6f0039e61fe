package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all repository instances
type Repositories struct {
	Snapshots *SnapshotRepository
	Reports   *ReportRepository
}

// NewRepositories creates all repository instances from a database pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Snapshots: NewSnapshotRepository(pool),
		Reports:   NewReportRepository(pool),
	}
}

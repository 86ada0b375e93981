// Package store persists assembly runs and their buyer groups behind a
// driver-agnostic interface with Postgres and SQLite implementations.
package store

import (
	"context"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Domain string          `json:"domain,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the assembly pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, company model.Company, dealSize float64) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Candidate pool audit trail
	SaveCandidates(ctx context.Context, runID string, candidates []model.CandidateEmployee) error

	// Buyer groups
	SaveGroup(ctx context.Context, group *model.BuyerGroup) error
	GetGroup(ctx context.Context, groupID string) (*model.BuyerGroup, error)
	GetGroupByRun(ctx context.Context, runID string) (*model.BuyerGroup, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/pkg/db"
)

// RunReader defines the database operations needed to read back saved runs
type RunReader interface {
	GetRuns(ctx context.Context) ([]db.OvertimeRun, error)
	GetRun(ctx context.Context, runID string) (*db.RunDetail, error)
}

// ListRuns returns every saved run, newest first
func ListRuns(ctx context.Context, store RunReader, logger *zap.Logger) ([]db.OvertimeRun, error) {
	logger.Debug("Fetching saved runs")
	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}
	logger.Debug("Found saved runs", zap.Int("count", len(runs)))
	return runs, nil
}

// ShowRun returns a saved run with its allocations, scores and advisories
func ShowRun(ctx context.Context, store RunReader, logger *zap.Logger, runID string) (*db.RunDetail, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run id is required")
	}

	logger.Debug("Fetching run", zap.String("run_id", runID))
	detail, err := store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run %s: %w", runID, err)
	}

	logger.Debug("Found run",
		zap.String("run_id", runID),
		zap.Int("allocations", len(detail.Allocations)),
		zap.Int("advisories", len(detail.Advisories)))

	return detail, nil
}

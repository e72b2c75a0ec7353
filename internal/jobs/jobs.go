// Package jobs holds the batch jobs that build and maintain the activity
// marts. Each job reads its input, applies one transactional write through
// the store, and records itself in the job run ledger. Jobs never retry;
// a failure surfaces to the caller and the ledger keeps the failed entry.
package jobs

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/basetide/activity-marts/internal/adapter"
	"github.com/basetide/activity-marts/internal/domain"
	"github.com/basetide/activity-marts/internal/logger"
	"github.com/basetide/activity-marts/internal/store"
	"github.com/basetide/activity-marts/internal/store/schema"
)

// recordRun brackets a job body with ledger entries: a running row before the
// body and a completed or failed row after it. The body receives the run ID
// and its detail map is stored on the final row; on failure the error text
// is added to it.
func recordRun(
	ctx context.Context,
	st store.Store,
	clk adapter.Clock,
	job domain.JobName,
	partitionKey string,
	body func(ctx context.Context, runID string) (map[string]any, error),
) error {
	run := &schema.JobRun{
		ID:           uuid.New().String(),
		Job:          job,
		PartitionKey: partitionKey,
		Status:       domain.JobRunRunning,
		StartedAt:    clk.Now(),
	}
	if err := st.CreateJobRun(ctx, run); err != nil {
		return err
	}

	detail, err := body(ctx, run.ID)
	if err != nil {
		if detail == nil {
			detail = make(map[string]any)
		}
		detail["error"] = err.Error()
		if finishErr := st.FinishJobRun(ctx, run.ID, domain.JobRunFailed, detail); finishErr != nil {
			logger.ErrorCtx(ctx, finishErr,
				zap.String("run_id", run.ID),
				zap.String("job", string(job)),
			)
		}
		return err
	}

	if err := st.FinishJobRun(ctx, run.ID, domain.JobRunCompleted, detail); err != nil {
		return err
	}

	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hibiken/asynq"

	"github.com/reservo/reservo/jobs"
)

// Enqueuer submits tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueStats prints the default queue's counters.
func QueueStats(inspector jobs.QueueInspector, w io.Writer) error {
	info, err := inspector.GetQueueInfo(jobs.QueueDefault)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		fmt.Fprintf(w, "queue %s is empty\n", jobs.QueueDefault)
		return nil
	}
	if err != nil {
		return fmt.Errorf("queue info: %w", err)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUEUE\tPENDING\tACTIVE\tRETRY\tARCHIVED\tPROCESSED\tFAILED")
	fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
		info.Queue, info.Pending, info.Active, info.Retry, info.Archived, info.Processed, info.Failed)
	return tw.Flush()
}

// EnqueueLedgerAudit requests an immediate slot counter audit.
func EnqueueLedgerAudit(ctx context.Context, enq Enqueuer, w io.Writer) error {
	info, err := enq.EnqueueContext(ctx, jobs.NewLedgerAuditTask())
	if err != nil {
		return fmt.Errorf("enqueue audit: %w", err)
	}
	fmt.Fprintf(w, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	return nil
}

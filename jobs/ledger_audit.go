package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/reservo/reservo/internal/booking"
	jobmetrics "github.com/reservo/reservo/internal/jobs"
)

// TaskLedgerAudit compares slot counters with stored reservations.
const TaskLedgerAudit = "ledger:audit"

// CounterAuditor reports drifted slot counters.
type CounterAuditor interface {
	AuditCounters(ctx context.Context) ([]booking.CounterMismatch, error)
}

// LedgerAuditJob logs every slot whose counter drifted.
type LedgerAuditJob struct {
	Auditor CounterAuditor
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLedgerAuditJob constructs the job handler.
func NewLedgerAuditJob(auditor CounterAuditor, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerAuditJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerAuditJob{Auditor: auditor, Logger: logger, Metrics: metrics}
}

// NewLedgerAuditTask creates the periodic audit task.
func NewLedgerAuditTask() *asynq.Task {
	return asynq.NewTask(TaskLedgerAudit, nil, asynq.Queue(QueueDefault))
}

// Handle executes the audit.
func (j *LedgerAuditJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Auditor == nil {
		return errors.New("ledger audit job not configured")
	}
	mismatches, err := j.Auditor.AuditCounters(ctx)
	if err != nil {
		return fmt.Errorf("audit counters: %w", err)
	}
	for _, m := range mismatches {
		j.Logger.Error("slot counter drift",
			slog.String("job", TaskLedgerAudit),
			slog.String("slot", m.Slot.String()),
			slog.Int("counter", m.Counter),
			slog.Int("stored", m.Stored))
	}
	j.Metrics.SetCounterMismatches(len(mismatches))
	if len(mismatches) == 0 {
		j.Logger.Debug("slot counters consistent", slog.String("job", TaskLedgerAudit))
	}
	return nil
}

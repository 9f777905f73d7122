package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reservo/reservo/internal/accounts"
	"github.com/reservo/reservo/internal/shared"
	"github.com/reservo/reservo/jobs"
)

func newAccounts(t *testing.T) *accounts.Service {
	t.Helper()
	svc, err := accounts.NewService(accounts.NewMemoryRepository(), bcrypt.MinCost)
	require.NoError(t, err)
	return svc
}

func TestCreateAdmin(t *testing.T) {
	svc := newAccounts(t)
	var out bytes.Buffer

	require.NoError(t, CreateAdmin(context.Background(), svc, &out, "root", "Root", "pw123"))
	require.Equal(t, "admin root created\n", out.String())
	account, err := svc.Lookup(context.Background(), "root")
	require.NoError(t, err)
	require.Equal(t, shared.RoleAdmin, account.Role)

	err = CreateAdmin(context.Background(), svc, &out, "root", "Root", "pw123")
	require.ErrorIs(t, err, shared.ErrDuplicateIdentifier)
	require.Error(t, CreateAdmin(context.Background(), svc, &out, "other", "Other", ""))
}

func TestSeedAccountsSkipsExisting(t *testing.T) {
	svc := newAccounts(t)
	var out bytes.Buffer
	_, err := svc.Register(context.Background(), "bob", "Bob", "pw")
	require.NoError(t, err)

	created, err := SeedAccounts(context.Background(), svc, &out, []string{"alice", "bob", "carol"}, "pw123")
	require.NoError(t, err)
	require.Equal(t, 2, created)
	require.Contains(t, out.String(), "bob exists, skipped")
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestQueueStats(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, QueueStats(stubInspector{info: &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 3, Processed: 10}}, &out))
	require.Contains(t, out.String(), "PENDING")
	require.Contains(t, out.String(), "default")

	out.Reset()
	require.NoError(t, QueueStats(stubInspector{err: asynq.ErrQueueNotFound}, &out))
	require.Contains(t, out.String(), "is empty")

	require.Error(t, QueueStats(stubInspector{err: errors.New("dial tcp")}, &out))
}

type stubEnqueuer struct {
	task *asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.task = task
	return &asynq.TaskInfo{ID: "abc", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func TestEnqueueLedgerAudit(t *testing.T) {
	var out bytes.Buffer
	enq := &stubEnqueuer{}
	require.NoError(t, EnqueueLedgerAudit(context.Background(), enq, &out))
	require.Equal(t, jobs.TaskLedgerAudit, enq.task.Type())
	require.Equal(t, "enqueued ledger:audit id=abc queue=default\n", out.String())
}

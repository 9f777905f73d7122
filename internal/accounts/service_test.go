package accounts

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reservo/reservo/internal/shared"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	svc, err := NewService(repo, bcrypt.MinCost)
	require.NoError(t, err)
	return svc, repo
}

func TestRegisterThenVerify(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "Alice", "pw123")
	require.NoError(t, err)
	require.Equal(t, shared.RoleRegular, registered.Role)
	require.NotEqual(t, "pw123", registered.PasswordHash)

	verified, err := svc.Verify(ctx, "alice", "pw123")
	require.NoError(t, err)
	require.Equal(t, registered, verified)
}

func TestVerifyFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Alice", "pw123")
	require.NoError(t, err)

	_, wrongPassword := svc.Verify(ctx, "alice", "wrongpw")
	_, unknownUser := svc.Verify(ctx, "bob", "anything")

	require.ErrorIs(t, wrongPassword, shared.ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, shared.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestDuplicateRegistration(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "Alice", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "Alice Again", "other")
	require.ErrorIs(t, err, shared.ErrDuplicateIdentifier)
	require.Equal(t, 1, repo.Len())

	account, err := svc.Lookup(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", account.DisplayName)
}

func TestConcurrentRegistrationSingleWinner(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	const callers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "carol", "Carol", "pw")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == shared.ErrDuplicateIdentifier:
				dupes++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, callers-1, dupes)
	require.Equal(t, 1, repo.Len())
}

func TestRegisterNormalizesIdentifier(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "  dave ", " Dave ", "pw")
	require.NoError(t, err)

	account, err := svc.Verify(ctx, "dave", "pw")
	require.NoError(t, err)
	require.Equal(t, "dave", account.Identifier)
	require.Equal(t, "Dave", account.DisplayName)

	_, err = svc.Register(ctx, "dave", "Dave", "pw")
	require.ErrorIs(t, err, shared.ErrDuplicateIdentifier)
}

func TestRegisterRejectsBadShape(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	cases := map[string]struct {
		identifier, name, password string
		reason                     string
	}{
		"missing identifier": {"   ", "Name", "pw", "identifier is required"},
		"missing name":       {"erin", "", "pw", "display_name is required"},
		"missing password":   {"erin", "Erin", "", "password is required"},
		"long identifier":    {strings.Repeat("x", 51), "Erin", "pw", "identifier must be at most 50 characters"},
		"long password":      {"erin", "Erin", strings.Repeat("p", 73), "password must be at most 72 bytes"},
		"nul in identifier":  {"er\x00in", "Erin", "pw", "identifier contains invalid characters"},
		"invalid utf8 name":  {"erin", "Er\xffin", "pw", "display_name contains invalid characters"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.identifier, tc.name, tc.password)
			require.ErrorIs(t, err, shared.ErrInvalidRequest)
			require.Equal(t, tc.reason, shared.UserSafeMessage(err))
		})
	}
	require.Zero(t, repo.Len())
}

func TestVerifyRejectsUnstorableIdentifier(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Verify(context.Background(), "ali\x00ce", "pw123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Verify(context.Background(), "ali\xffce", "pw123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestProvisionAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Provision(ctx, "admin", "Admin", "s3cret", shared.RoleAdmin)
	require.NoError(t, err)
	require.True(t, admin.IsAdmin())

	_, err = svc.Provision(ctx, "root", "Root", "s3cret", shared.Role("superuser"))
	require.ErrorIs(t, err, shared.ErrInvalidRequest)
}

func TestNewServiceClampsCost(t *testing.T) {
	svc, err := NewService(NewMemoryRepository(), 99)
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, svc.cost)
}

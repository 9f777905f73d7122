package booking

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reservo/reservo/internal/shared"
)

func TestRequestValidation(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	v := newRequestValidator(DefaultPolicy())

	cases := []struct {
		name   string
		req    Request
		reason string
	}{
		{"ok", Request{Date: "2025-06-01", Time: "18:00", PartySize: 2}, ""},
		{"missing date", Request{Time: "18:00", PartySize: 2}, "date is required"},
		{"bad date", Request{Date: "06/01/2025", Time: "18:00", PartySize: 2}, "date must match 2006-01-02"},
		{"bad time", Request{Date: "2025-06-01", Time: "6pm", PartySize: 2}, "time must match 15:04"},
		{"unpadded hour", Request{Date: "2025-06-01", Time: "7:00", PartySize: 2}, "time must match 15:04"},
		{"zero party", Request{Date: "2025-06-01", Time: "18:00", PartySize: 0}, "party_size must be at least 1"},
		{"huge party", Request{Date: "2025-06-01", Time: "18:00", PartySize: 11}, "party_size must be at most 10"},
		{"long notes", Request{Date: "2025-06-01", Time: "18:00", PartySize: 1, Notes: strings.Repeat("é", 201)}, "notes must be at most 200 characters"},
		{"nul in notes", Request{Date: "2025-06-01", Time: "18:00", PartySize: 1, Notes: "table\x00 by the door"}, "notes contains invalid characters"},
		{"invalid utf8 notes", Request{Date: "2025-06-01", Time: "18:00", PartySize: 1, Notes: "caf\xe9"}, "notes contains invalid characters"},
		{"past slot", Request{Date: "2025-04-30", Time: "18:00", PartySize: 1}, "slot must be in the future"},
		{"slot equal to now", Request{Date: "2025-05-01", Time: "12:00", PartySize: 1}, "slot must be in the future"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, err := v.check(tc.req, now)
			if tc.reason == "" {
				require.NoError(t, err)
				require.Equal(t, SlotKey{Date: tc.req.Date, Time: tc.req.Time}, key)
				return
			}
			require.ErrorIs(t, err, shared.ErrInvalidRequest)
			var invalid *shared.InvalidRequestError
			require.True(t, errors.As(err, &invalid))
			require.Equal(t, tc.reason, invalid.Reason)
		})
	}
}

func TestNotesAlwaysBounded(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultPolicy()
	policy.NotesMaxLength = 0
	v := newRequestValidator(policy)

	_, err := v.check(Request{Date: "2025-06-01", Time: "18:00", PartySize: 1, Notes: strings.Repeat("n", 200)}, now)
	require.NoError(t, err)
	_, err = v.check(Request{Date: "2025-06-01", Time: "18:00", PartySize: 1, Notes: strings.Repeat("n", 201)}, now)
	require.ErrorIs(t, err, shared.ErrInvalidRequest)
}

func TestValidationHonoursPolicy(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultPolicy()
	policy.RequireFuture = false
	policy.MaxPartySize = 3
	v := newRequestValidator(policy)

	_, err := v.check(Request{Date: "2020-01-01", Time: "10:00", PartySize: 3}, now)
	require.NoError(t, err)
	_, err = v.check(Request{Date: "2020-01-01", Time: "10:00", PartySize: 4}, now)
	require.ErrorIs(t, err, shared.ErrInvalidRequest)
}

func TestFutureCheckUsesSlotLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	policy := DefaultPolicy()
	policy.Location = loc
	v := newRequestValidator(policy)

	// 14:00 at UTC+3 is 11:00 UTC, an hour before now.
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err := v.check(Request{Date: "2025-05-01", Time: "14:00", PartySize: 1}, now)
	require.ErrorIs(t, err, shared.ErrInvalidRequest)
	_, err = v.check(Request{Date: "2025-05-01", Time: "16:00", PartySize: 1}, now)
	require.NoError(t, err)
}

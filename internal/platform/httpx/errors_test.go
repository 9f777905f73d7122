package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reservo/reservo/internal/shared"
)

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{shared.InvalidRequest("party size out of range"), http.StatusBadRequest, "invalid_request"},
		{shared.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{fmt.Errorf("book: %w", shared.ErrUnauthenticated), http.StatusUnauthorized, "unauthenticated"},
		{shared.ErrForbidden, http.StatusForbidden, "forbidden"},
		{shared.ErrDuplicateIdentifier, http.StatusConflict, "duplicate_identifier"},
		{shared.ErrSlotFull, http.StatusConflict, "slot_full"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		require.Equal(t, tc.status, rr.Code, tc.err.Error())
		require.Equal(t, tc.status, StatusFor(tc.err))

		var problem ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
		require.Equal(t, tc.code, problem.Code)
	}
}

func TestRespondErrorKeepsReasonAndHidesInternals(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, shared.InvalidRequest("notes too long"))
	require.Contains(t, rr.Body.String(), "notes too long")

	rr = httptest.NewRecorder()
	RespondError(rr, errors.New("pq: password authentication failed"))
	require.NotContains(t, rr.Body.String(), "password authentication")
}

func TestDecodeJSONRejectsUnknownAndTrailing(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	decode := func(body string) (payload, error) {
		var p payload
		err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), &p)
		return p, err
	}

	p, err := decode(`{"name":"alice"}`)
	require.NoError(t, err)
	require.Equal(t, "alice", p.Name)

	_, err = decode(`{"name":"alice","admin":true}`)
	require.Error(t, err)
	_, err = decode(`{"name":"alice"} {"name":"bob"}`)
	require.Error(t, err)
	_, err = decode(`{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`)
	require.Error(t, err)
}

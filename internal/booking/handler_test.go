package booking_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/reservo/reservo/internal/booking"
	"github.com/reservo/reservo/internal/shared"
)

func newRouter(t *testing.T) (http.Handler, *fakeAuth) {
	t.Helper()
	svc, auth, _ := newService(t)
	h := booking.NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")
			next.ServeHTTP(w, req.WithContext(shared.ContextWithToken(req.Context(), token)))
		})
	})
	r.Route("/reservations", h.MountRoutes)
	r.Route("/admin", h.MountAdminRoutes)
	r.Route("/slots", h.MountSlotRoutes)
	return r, auth
}

func call(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestBookEndpoint(t *testing.T) {
	router, auth := newRouter(t)
	token := auth.login("alice", shared.RoleRegular)

	res := call(router, http.MethodPost, "/reservations", token, `{"date":"2025-06-01","time":"18:00","party_size":2,"notes":"window"}`)
	require.Equal(t, http.StatusCreated, res.Code)
	var created booking.Reservation
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	require.Equal(t, "alice", created.Identifier)
	require.Equal(t, "/reservations/"+created.ID.String(), res.Header().Get("Location"))

	res = call(router, http.MethodGet, "/reservations/"+created.ID.String(), token, "")
	require.Equal(t, http.StatusOK, res.Code)

	res = call(router, http.MethodGet, "/reservations/not-a-uuid", token, "")
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestBookEndpointErrors(t *testing.T) {
	router, auth := newRouter(t)
	body := `{"date":"2025-06-01","time":"18:00","party_size":1}`

	res := call(router, http.MethodPost, "/reservations", "", body)
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Contains(t, res.Body.String(), `"code":"unauthenticated"`)

	res = call(router, http.MethodPost, "/reservations", auth.login("x", shared.RoleRegular), `{"date":"2025-06-01","time":"18:00","party_size":99}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), "party_size must be at most 10")

	res = call(router, http.MethodPost, "/reservations", auth.login("x", shared.RoleRegular), `{"date":`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	for _, name := range []string{"alice", "bob", "carol"} {
		res = call(router, http.MethodPost, "/reservations", auth.login(name, shared.RoleRegular), body)
		require.Equal(t, http.StatusCreated, res.Code)
	}
	res = call(router, http.MethodPost, "/reservations", auth.login("dave", shared.RoleRegular), body)
	require.Equal(t, http.StatusConflict, res.Code)
	require.Contains(t, res.Body.String(), `"code":"slot_full"`)
}

func TestListEndpoints(t *testing.T) {
	router, auth := newRouter(t)
	alice := auth.login("alice", shared.RoleRegular)

	res := call(router, http.MethodGet, "/reservations?future=1", alice, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"reservations":[],"count":0}`, res.Body.String())

	res = call(router, http.MethodPost, "/reservations", alice, `{"date":"2025-06-01","time":"18:00","party_size":2}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = call(router, http.MethodGet, "/reservations", alice, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"count":1`)

	res = call(router, http.MethodGet, "/admin/reservations", alice, "")
	require.Equal(t, http.StatusForbidden, res.Code)

	res = call(router, http.MethodGet, "/admin/reservations", auth.login("root", shared.RoleAdmin), "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"count":1`)

	res = call(router, http.MethodGet, "/slots/2025-06-01/18:00", alice, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"slot":{"date":"2025-06-01","time":"18:00"},"capacity":3,"booked":1,"remaining":2}`, res.Body.String())
}

func TestAdminPaginationOutOfRange(t *testing.T) {
	router, auth := newRouter(t)
	for _, name := range []string{"alice", "bob"} {
		res := call(router, http.MethodPost, "/reservations", auth.login(name, shared.RoleRegular), `{"date":"2025-06-01","time":"18:00","party_size":1}`)
		require.Equal(t, http.StatusCreated, res.Code)
	}
	admin := auth.login("root", shared.RoleAdmin)

	res := call(router, http.MethodGet, "/admin/reservations?page=9223372036854775807&per_page=100", admin, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"reservations":[]`)
	require.Contains(t, res.Body.String(), `"count":0`)

	res = call(router, http.MethodGet, "/admin/reservations?page=2&per_page=1", admin, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"count":1`)
	require.Contains(t, res.Body.String(), `"total":2`)
}

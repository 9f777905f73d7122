package booking

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reservo/reservo/internal/platform/httpx"
	"github.com/reservo/reservo/internal/shared"
)

// Handler exposes booking endpoints. The session token is read from the
// request context, where the middleware stack places it.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reservation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleBook)
	r.Get("/", h.handleMine)
	r.Get("/{id}", h.handleGet)
}

// MountAdminRoutes registers the admin listing.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/reservations", h.handleAll)
}

// MountSlotRoutes registers the availability lookup.
func (h *Handler) MountSlotRoutes(r chi.Router) {
	r.Get("/{date}/{time}", h.handleAvailability)
}

type listResponse struct {
	Reservations []Reservation      `json:"reservations"`
	Count        int                `json:"count"`
	Pagination   *shared.Pagination `json:"pagination,omitempty"`
}

func (h *Handler) handleBook(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.InvalidRequest("malformed request body"))
		return
	}
	res, err := h.service.Book(r.Context(), shared.TokenFromContext(r.Context()), req)
	if err != nil {
		h.respondFailure(w, "book", err)
		return
	}
	w.Header().Set("Location", "/reservations/"+res.ID.String())
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	futureOnly, _ := strconv.ParseBool(r.URL.Query().Get("future"))
	list, err := h.service.MyReservations(r.Context(), shared.TokenFromContext(r.Context()), futureOnly)
	if err != nil {
		h.respondFailure(w, "list mine", err)
		return
	}
	h.respondList(w, list)
}

func (h *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.AllReservations(r.Context(), shared.TokenFromContext(r.Context()))
	if err != nil {
		h.respondFailure(w, "list all", err)
		return
	}
	query := r.URL.Query()
	if query.Get("page") == "" && query.Get("per_page") == "" {
		h.respondList(w, list)
		return
	}
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))
	meta := shared.NewPagination(page, perPage, len(list))
	start, end := meta.Bounds()
	window := list[start:end]
	if window == nil {
		window = []Reservation{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Reservations: window, Count: len(window), Pagination: &meta})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	res, err := h.service.Reservation(r.Context(), shared.TokenFromContext(r.Context()), id)
	if err != nil {
		h.respondFailure(w, "get", err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	key := SlotKey{Date: chi.URLParam(r, "date"), Time: chi.URLParam(r, "time")}
	avail, err := h.service.Availability(r.Context(), shared.TokenFromContext(r.Context()), key)
	if err != nil {
		h.respondFailure(w, "availability", err)
		return
	}
	httpx.JSON(w, http.StatusOK, avail)
}

func (h *Handler) respondList(w http.ResponseWriter, list []Reservation) {
	if list == nil {
		list = []Reservation{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Reservations: list, Count: len(list)})
}

func (h *Handler) respondFailure(w http.ResponseWriter, op string, err error) {
	if httpx.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error("booking request failed", slog.String("op", op), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

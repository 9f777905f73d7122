package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/reservo/reservo/internal/shared"
)

// Authenticator resolves a session token into the calling principal,
// failing with shared.ErrUnauthenticated.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (shared.Principal, error)
}

// Notifier is told about admitted reservations.
type Notifier interface {
	NotifyConfirmed(ctx context.Context, res Reservation) error
}

// Recorder observes booking attempt outcomes.
type Recorder interface {
	ObserveBooking(outcome string)
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier sets the confirmation notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service is the booking workflow and the guarded entry to the catalog.
type Service struct {
	auth      Authenticator
	store     Store
	policy    Policy
	validator requestValidator
	now       func() time.Time
	newID     func() uuid.UUID
	notifier  Notifier
	recorder  Recorder
	logger    *slog.Logger
}

// NewService constructs a Service.
func NewService(auth Authenticator, store Store, policy Policy, opts ...Option) *Service {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	s := &Service{
		auth:      auth,
		store:     store,
		policy:    policy,
		validator: newRequestValidator(policy),
		now:       time.Now,
		newID:     uuid.New,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the admission parameters in effect.
func (s *Service) Policy() Policy {
	return s.policy
}

// Book runs one booking attempt: authenticate, validate, admit. Nothing is
// written unless the attempt is admitted.
func (s *Service) Book(ctx context.Context, token string, req Request) (Reservation, error) {
	principal, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		s.observe(outcomeFor(err))
		return Reservation{}, err
	}
	now := s.now()
	key, err := s.validator.check(req, now)
	if err != nil {
		s.observe(OutcomeInvalidRequest)
		return Reservation{}, err
	}
	res, err := s.store.TryReserve(ctx, Reservation{
		ID:         s.newID(),
		Identifier: principal.Identifier,
		Slot:       key,
		PartySize:  req.PartySize,
		Notes:      req.Notes,
		CreatedAt:  now.UTC(),
	}, s.policy.Capacity)
	if err != nil {
		outcome := outcomeFor(err)
		s.observe(outcome)
		if outcome == OutcomeError {
			s.logger.Warn("reservation admission failed",
				slog.String("identifier", principal.Identifier),
				slog.String("slot", key.String()),
				slog.Any("error", err))
		}
		return Reservation{}, err
	}
	s.observe(OutcomeAdmitted)
	s.logger.Info("reservation admitted",
		slog.String("id", res.ID.String()),
		slog.String("identifier", res.Identifier),
		slog.String("slot", res.Slot.String()),
		slog.Int("party_size", res.PartySize))
	s.notify(ctx, res)
	return res, nil
}

// MyReservations lists the caller's reservations sorted by slot. With
// futureOnly, slots not strictly after the current time are dropped.
func (s *Service) MyReservations(ctx context.Context, token string, futureOnly bool) ([]Reservation, error) {
	principal, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListForAccount(ctx, principal.Identifier)
	if err != nil {
		return nil, err
	}
	if futureOnly {
		now := s.now()
		kept := list[:0]
		for _, res := range list {
			if s.validator.isFuture(res.Slot, now) {
				kept = append(kept, res)
			}
		}
		list = kept
	}
	sortReservations(list)
	return list, nil
}

// AllReservations lists every reservation for an admin caller.
func (s *Service) AllReservations(ctx context.Context, token string) ([]Reservation, error) {
	principal, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	list, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sortReservations(list)
	return list, nil
}

// Reservation returns one reservation to its owner or an admin. Other callers
// see shared.ErrNotFound.
func (s *Service) Reservation(ctx context.Context, token string, id uuid.UUID) (Reservation, error) {
	principal, err := s.auth.Authenticate(ctx, token)
	if err != nil {
		return Reservation{}, err
	}
	res, err := s.store.Get(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if res.Identifier != principal.Identifier && !principal.IsAdmin() {
		return Reservation{}, shared.ErrNotFound
	}
	return res, nil
}

// Availability reports remaining capacity for a slot.
func (s *Service) Availability(ctx context.Context, token string, key SlotKey) (Availability, error) {
	if _, err := s.auth.Authenticate(ctx, token); err != nil {
		return Availability{}, err
	}
	if err := s.validator.checkKey(key); err != nil {
		return Availability{}, err
	}
	booked, err := s.store.Occupancy(ctx, key)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Slot:      key,
		Capacity:  s.policy.Capacity,
		Booked:    booked,
		Remaining: max(s.policy.Capacity-booked, 0),
	}, nil
}

// notify is best effort; a failure never changes the booking outcome.
func (s *Service) notify(ctx context.Context, res Reservation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyConfirmed(ctx, res); err != nil {
		s.logger.Warn("enqueue confirmation", slog.String("id", res.ID.String()), slog.Any("error", err))
	}
}

func (s *Service) observe(outcome Outcome) {
	if s.recorder != nil {
		s.recorder.ObserveBooking(string(outcome))
	}
}

func outcomeFor(err error) Outcome {
	switch {
	case errors.Is(err, shared.ErrSlotFull):
		return OutcomeSlotFull
	case errors.Is(err, shared.ErrInvalidRequest):
		return OutcomeInvalidRequest
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrNoSession):
		return OutcomeUnauthenticated
	default:
		return OutcomeError
	}
}

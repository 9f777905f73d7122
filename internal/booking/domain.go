package booking

import (
	"time"

	"github.com/google/uuid"
)

// Token layouts for slot date and time.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// SlotKey identifies a bookable (date, time) pair. Both parts are kept in
// their canonical token form so lexical order equals chronological order.
type SlotKey struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

func (k SlotKey) String() string {
	return k.Date + " " + k.Time
}

// Less orders slot keys by date then time.
func (k SlotKey) Less(other SlotKey) bool {
	if k.Date != other.Date {
		return k.Date < other.Date
	}
	return k.Time < other.Time
}

// Reservation is an admitted booking. It is immutable once created.
type Reservation struct {
	ID         uuid.UUID `json:"id"`
	Identifier string    `json:"identifier"`
	Slot       SlotKey   `json:"slot"`
	PartySize  int       `json:"party_size"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// Request is the caller-supplied shape of a booking attempt.
type Request struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string `json:"time" validate:"required,datetime=15:04"`
	PartySize int    `json:"party_size" validate:"gte=1"`
	Notes     string `json:"notes" validate:"storable"`
}

// Policy holds the admission parameters.
type Policy struct {
	Capacity       int
	MaxPartySize   int
	RequireFuture  bool
	NotesMaxLength int
	Location       *time.Location
}

// DefaultPolicy mirrors the stock configuration.
func DefaultPolicy() Policy {
	return Policy{
		Capacity:       3,
		MaxPartySize:   10,
		RequireFuture:  true,
		NotesMaxLength: 200,
		Location:       time.UTC,
	}
}

// Availability reports occupancy of one slot.
type Availability struct {
	Slot      SlotKey `json:"slot"`
	Capacity  int     `json:"capacity"`
	Booked    int     `json:"booked"`
	Remaining int     `json:"remaining"`
}

// Outcome labels the terminal state of a booking attempt.
type Outcome string

const (
	OutcomeAdmitted        Outcome = "admitted"
	OutcomeSlotFull        Outcome = "slot_full"
	OutcomeInvalidRequest  Outcome = "invalid_request"
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomeError           Outcome = "error"
)

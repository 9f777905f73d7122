package booking

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/reservo/reservo/internal/shared"
)

// requestValidator performs the shape checks that precede admission.
type requestValidator struct {
	policy   Policy
	validate *validator.Validate
}

// newRequestValidator falls back to the default notes bound when policy
// leaves it unset, so notes are never unbounded.
func newRequestValidator(policy Policy) requestValidator {
	if policy.NotesMaxLength <= 0 {
		policy.NotesMaxLength = DefaultPolicy().NotesMaxLength
	}
	return requestValidator{policy: policy, validate: shared.NewValidator()}
}

// check returns the slot key of a well-formed request, or an
// InvalidRequestError naming the first problem.
func (v requestValidator) check(req Request, now time.Time) (SlotKey, error) {
	if err := v.validate.Struct(req); err != nil {
		return SlotKey{}, shared.ValidationError(err)
	}
	if v.policy.MaxPartySize > 0 && req.PartySize > v.policy.MaxPartySize {
		return SlotKey{}, shared.InvalidRequest(fmt.Sprintf("party_size must be at most %d", v.policy.MaxPartySize))
	}
	if utf8.RuneCountInString(req.Notes) > v.policy.NotesMaxLength {
		return SlotKey{}, shared.InvalidRequest(fmt.Sprintf("notes must be at most %d characters", v.policy.NotesMaxLength))
	}
	key := SlotKey{Date: req.Date, Time: req.Time}
	if err := v.checkKey(key); err != nil {
		return SlotKey{}, err
	}
	if v.policy.RequireFuture {
		at, err := v.slotTime(key)
		if err != nil {
			return SlotKey{}, err
		}
		if !at.After(now) {
			return SlotKey{}, shared.InvalidRequest("slot must be in the future")
		}
	}
	return key, nil
}

// checkKey requires both tokens in canonical zero-padded form. time.Parse
// accepts a single-digit hour, which would break lexical ordering.
func (v requestValidator) checkKey(key SlotKey) error {
	if _, err := time.Parse(DateLayout, key.Date); err != nil || len(key.Date) != len(DateLayout) {
		return shared.InvalidRequest("date must match " + DateLayout)
	}
	if _, err := time.Parse(TimeLayout, key.Time); err != nil || len(key.Time) != len(TimeLayout) {
		return shared.InvalidRequest("time must match " + TimeLayout)
	}
	return nil
}

func (v requestValidator) slotTime(key SlotKey) (time.Time, error) {
	loc := v.policy.Location
	if loc == nil {
		loc = time.UTC
	}
	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, key.String(), loc)
	if err != nil {
		return time.Time{}, shared.InvalidRequest("slot date and time are not parseable")
	}
	return at, nil
}

// isFuture reports whether key lies strictly after now. Unparseable keys are
// treated as past.
func (v requestValidator) isFuture(key SlotKey, now time.Time) bool {
	at, err := v.slotTime(key)
	if err != nil {
		return false
	}
	return at.After(now)
}

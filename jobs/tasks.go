package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/reservo/reservo/internal/booking"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReservationConfirmed announces an admitted reservation.
	TaskReservationConfirmed = "reservation:confirmed"
)

// ReservationConfirmedPayload describes an admitted reservation.
type ReservationConfirmedPayload struct {
	ReservationID string    `json:"reservation_id"`
	Identifier    string    `json:"identifier"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	PartySize     int       `json:"party_size"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewReservationConfirmedTask constructs an Asynq task. The task id is the
// reservation id so a retried enqueue cannot duplicate the notice.
func NewReservationConfirmedTask(res booking.Reservation) (*asynq.Task, error) {
	payload := ReservationConfirmedPayload{
		ReservationID: res.ID.String(),
		Identifier:    res.Identifier,
		Date:          res.Slot.Date,
		Time:          res.Slot.Time,
		PartySize:     res.PartySize,
		CreatedAt:     res.CreatedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationConfirmed, data,
		asynq.Queue(QueueDefault),
		asynq.TaskID("confirm:"+payload.ReservationID),
		asynq.MaxRetry(5),
	), nil
}

// ConfirmationJob delivers reservation confirmations. Delivery is a log notice.
type ConfirmationJob struct {
	Logger *slog.Logger
}

// NewConfirmationJob constructs the job handler.
func NewConfirmationJob(logger *slog.Logger) *ConfirmationJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmationJob{Logger: logger}
}

// Handle processes TaskReservationConfirmed tasks.
func (j *ConfirmationJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ReservationConfirmedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TaskReservationConfirmed, err, asynq.SkipRetry)
	}
	j.Logger.Info("reservation confirmed",
		slog.String("job", TaskReservationConfirmed),
		slog.String("reservation_id", payload.ReservationID),
		slog.String("identifier", payload.Identifier),
		slog.String("slot", payload.Date+" "+payload.Time),
		slog.Int("party_size", payload.PartySize))
	return nil
}

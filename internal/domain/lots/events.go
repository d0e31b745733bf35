package lots

import (
	"context"
	"time"
)

//go:generate mockgen -source=events.go -destination=mocks/publisher_mock.go -package=mocks

type EventType string

const (
	EventLotCreated          EventType = "lot.created"
	EventTemperatureRecorded EventType = "temperature.recorded"
	EventColdChainBreached   EventType = "coldchain.breached"
	EventLotDelivered        EventType = "lot.delivered"
)

// Event es un hecho ya confirmado en el ledger.
type Event struct {
	Type       EventType          `json:"type"`
	LotID      string             `json:"lot_id"`
	OccurredAt time.Time          `json:"occurred_at"`
	Status     Status             `json:"status"`
	TempMin    float64            `json:"temp_min"`
	TempMax    float64            `json:"temp_max"`
	Record     *TemperatureRecord `json:"record,omitempty"`

	// FirstBreach es true solo en la lectura que rompió la cadena por primera vez.
	FirstBreach bool `json:"first_breach,omitempty"`
}

// Publisher entrega eventos del ledger a quien le interese (alertas, auditoría).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }

package memory

import (
	"context"
	"sync"

	"cold-chain-ledger/internal/domain/lots"
)

// Recorder guarda en memoria los eventos publicados, en orden.
type Recorder struct {
	mu     sync.RWMutex
	events []lots.Event
}

func NewRecorder() *Recorder {
	return &Recorder{events: make([]lots.Event, 0)}
}

func (r *Recorder) Publish(_ context.Context, e lots.Event) error {
	if e.Record != nil {
		rec := *e.Record
		e.Record = &rec
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events devuelve una copia de todo lo publicado.
func (r *Recorder) Events() []lots.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lots.Event, len(r.events))
	copy(out, r.events)
	return out
}

// ByLot filtra por lote y, opcionalmente, por tipo ("" = todos).
func (r *Recorder) ByLot(lotID string, t lots.EventType) []lots.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lots.Event, 0)
	for _, e := range r.events {
		if e.LotID != lotID {
			continue
		}
		if t != "" && e.Type != t {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}

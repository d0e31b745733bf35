package lots

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cold-chain-ledger/internal/platform/logger"
	"cold-chain-ledger/internal/platform/metrics"
)

// Service es el ledger de cadena de frío: dueño de los lotes, sus historiales
// y las transiciones active -> compromised -> delivered.
type Service struct {
	repo    Repository
	pub     Publisher
	log     logger.Logger
	metrics *metrics.Metrics
	locks   *lotLocks
	now     func() time.Time
}

// Option configura el Service.
type Option func(*Service)

// WithPublisher define a dónde se envían los eventos confirmados.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.pub = p
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock reemplaza el reloj del ledger (tests, simulaciones).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		pub:   nopPublisher{},
		log:   logger.Nop(),
		locks: newLotLocks(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateInput struct {
	ID         string
	TempMin    float64
	TempMax    float64
	Custodians Custodians
}

type RecordInput struct {
	Value      float64
	RecordedBy Role
	Location   string
}

// CreateLot registra un lote nuevo en estado active, sin historial ni ruptura.
func (s *Service) CreateLot(ctx context.Context, in CreateInput) (Lot, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Lot{}, invalid("id", "must not be empty")
	}
	if !finite(in.TempMin) || !finite(in.TempMax) {
		return Lot{}, invalid("temp_range", "bounds must be finite numbers")
	}
	if in.TempMin > in.TempMax {
		return Lot{}, invalid("temp_range", fmt.Sprintf("temp_min %.2f is greater than temp_max %.2f", in.TempMin, in.TempMax))
	}
	if r := in.Custodians.missing(); r != "" {
		return Lot{}, invalid("custodians", fmt.Sprintf("missing %s participant", r))
	}

	l := Lot{
		ID:         id,
		CreatedAt:  s.now(),
		Status:     StatusActive,
		TempMin:    in.TempMin,
		TempMax:    in.TempMax,
		Custodians: in.Custodians,
		History:    []TemperatureRecord{},
		Breached:   false,
	}

	unlock := s.locks.lock(id)
	err := s.repo.Create(ctx, l)
	unlock()
	if err != nil {
		if errors.Is(err, ErrLotExists) {
			return Lot{}, invalid("id", fmt.Sprintf("lot %q already exists", id))
		}
		return Lot{}, fmt.Errorf("create lot %q: %w", id, err)
	}

	s.metrics.IncLotsCreated()
	s.log.Info("lot created", map[string]any{
		"lot_id":   id,
		"temp_min": l.TempMin,
		"temp_max": l.TempMax,
	})
	s.publish(ctx, Event{
		Type:       EventLotCreated,
		LotID:      id,
		OccurredAt: l.CreatedAt,
		Status:     l.Status,
		TempMin:    l.TempMin,
		TempMax:    l.TempMax,
	})

	return l.Clone(), nil
}

// RecordTemperature agrega una lectura al historial. Si la lectura cae fuera del
// rango, el lote queda marcado como roto y pasa a compromised (salvo que ya esté
// delivered). El append y la actualización de estado se aplican como una unidad.
//
// Un lote delivered sigue aceptando lecturas: quedan en el historial y pueden
// marcar la ruptura, pero el estado no se reabre.
//
// Un lote inexistente devuelve NotFoundError aunque el rol o el valor sean inválidos.
func (s *Service) RecordTemperature(ctx context.Context, lotID string, in RecordInput) (Lot, error) {
	lotID = strings.TrimSpace(lotID)

	var (
		rec         TemperatureRecord
		firstBreach bool
	)

	unlock := s.locks.lock(lotID)
	updated, err := s.repo.Update(ctx, lotID, func(l *Lot) error {
		role, ok := ParseRole(string(in.RecordedBy))
		if !ok {
			return invalid("recorded_by", fmt.Sprintf("unknown role %q", in.RecordedBy))
		}
		if !finite(in.Value) {
			return invalid("value", "must be a finite number")
		}

		rec = TemperatureRecord{
			Value:      in.Value,
			RecordedAt: s.now(),
			RecordedBy: role,
			Custodian:  l.Custodians.For(role),
			Location:   strings.TrimSpace(in.Location),
			OutOfRange: OutOfRange(in.Value, l.TempMin, l.TempMax),
		}
		l.History = append(l.History, rec)

		if rec.OutOfRange {
			firstBreach = !l.Breached
			l.Breached = true
			if l.Status != StatusDelivered {
				l.Status = StatusCompromised
			}
		}
		return nil
	})
	unlock()
	if err != nil {
		return Lot{}, s.storageErr(lotID, "record temperature", err)
	}

	s.metrics.ObserveReading(rec.OutOfRange)
	fields := map[string]any{
		"lot_id":       lotID,
		"value":        rec.Value,
		"recorded_by":  string(rec.RecordedBy),
		"out_of_range": rec.OutOfRange,
		"status":       string(updated.Status),
	}
	if rec.OutOfRange {
		s.log.Warn("temperature out of range", fields)
	} else {
		s.log.Debug("temperature recorded", fields)
	}

	base := Event{
		LotID:      lotID,
		OccurredAt: rec.RecordedAt,
		Status:     updated.Status,
		TempMin:    updated.TempMin,
		TempMax:    updated.TempMax,
	}
	recorded := base
	recorded.Type = EventTemperatureRecorded
	recorded.Record = &rec
	s.publish(ctx, recorded)

	if rec.OutOfRange {
		if firstBreach {
			s.metrics.IncBreaches()
		}
		breached := base
		breached.Type = EventColdChainBreached
		breached.Record = &rec
		breached.FirstBreach = firstBreach
		s.publish(ctx, breached)
	}

	return updated, nil
}

// MarkDelivered cierra el lote. Es idempotente: sobre un lote ya delivered
// no cambia nada y no emite eventos.
func (s *Service) MarkDelivered(ctx context.Context, lotID string) (Lot, error) {
	lotID = strings.TrimSpace(lotID)

	transitioned := false

	unlock := s.locks.lock(lotID)
	updated, err := s.repo.Update(ctx, lotID, func(l *Lot) error {
		if l.Status == StatusDelivered {
			return nil
		}
		now := s.now()
		l.Status = StatusDelivered
		l.DeliveredAt = &now
		transitioned = true
		return nil
	})
	unlock()
	if err != nil {
		return Lot{}, s.storageErr(lotID, "mark delivered", err)
	}

	if transitioned {
		s.metrics.IncDelivered()
		s.log.Info("lot delivered", map[string]any{
			"lot_id":   lotID,
			"breached": updated.Breached,
			"records":  len(updated.History),
		})
		s.publish(ctx, Event{
			Type:       EventLotDelivered,
			LotID:      lotID,
			OccurredAt: *updated.DeliveredAt,
			Status:     updated.Status,
			TempMin:    updated.TempMin,
			TempMax:    updated.TempMax,
		})
	}

	return updated, nil
}

func (s *Service) GetLot(ctx context.Context, lotID string) (Lot, error) {
	lotID = strings.TrimSpace(lotID)
	l, err := s.repo.GetByID(ctx, lotID)
	if err != nil {
		return Lot{}, s.storageErr(lotID, "get lot", err)
	}
	return l, nil
}

// ListLots devuelve todos los lotes en orden de creación.
func (s *Service) ListLots(ctx context.Context) ([]Lot, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return items, nil
}

type HistoryFilter struct {
	OutOfRangeOnly bool
	Role           Role
	Limit          int
}

// History devuelve el historial del lote en orden de registro, filtrado.
// Limit <= 0 significa sin límite.
func (s *Service) History(ctx context.Context, lotID string, f HistoryFilter) ([]TemperatureRecord, error) {
	l, err := s.GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}

	out := make([]TemperatureRecord, 0, len(l.History))
	for _, r := range l.History {
		if f.OutOfRangeOnly && !r.OutOfRange {
			continue
		}
		if f.Role != "" && r.RecordedBy != f.Role {
			continue
		}
		out = append(out, r)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// Summary resume el lote: conteos, extremos observados y última lectura.
func (s *Service) Summary(ctx context.Context, lotID string) (LotSummary, error) {
	l, err := s.GetLot(ctx, lotID)
	if err != nil {
		return LotSummary{}, err
	}
	return Summarize(l), nil
}

func (s *Service) publish(ctx context.Context, e Event) {
	if err := s.pub.Publish(ctx, e); err != nil {
		s.metrics.IncPublishFailures()
		s.log.Error("publish ledger event failed", map[string]any{
			"lot_id": e.LotID,
			"type":   string(e.Type),
			"error":  err.Error(),
		})
	}
}

func (s *Service) storageErr(lotID, op string, err error) error {
	if errors.Is(err, ErrLotNotFound) {
		return &NotFoundError{LotID: lotID}
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return fmt.Errorf("%s %q: %w", op, lotID, err)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

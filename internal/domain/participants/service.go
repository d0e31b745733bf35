package participants

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/platform/logger"
)

var (
	ErrNotIssued       = errors.New("participants not issued")
	ErrInvalidIssuance = errors.New("directory returned incomplete participants")
)

// Service mantiene el juego de trabajo del proceso.
// Re-emitir reemplaza el juego; los lotes ya creados conservan sus custodios.
type Service struct {
	dir Directory
	log logger.Logger
	now func() time.Time

	mu       sync.RWMutex
	current  Participants
	issuedAt time.Time
	issued   bool
}

func NewService(dir Directory, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		dir: dir,
		log: log,
		now: time.Now,
	}
}

// Issue pide un juego nuevo al directorio y lo deja como juego de trabajo.
func (s *Service) Issue(ctx context.Context) (Participants, time.Time, error) {
	p, err := s.dir.Issue(ctx)
	if err != nil {
		return Participants{}, time.Time{}, fmt.Errorf("issue participants: %w", err)
	}
	if !p.Valid() {
		return Participants{}, time.Time{}, ErrInvalidIssuance
	}

	s.mu.Lock()
	replaced := s.issued
	s.current = p
	s.issuedAt = s.now()
	s.issued = true
	at := s.issuedAt
	s.mu.Unlock()

	s.log.Info("participants issued", map[string]any{
		"laboratory": string(p.Laboratory),
		"logistics":  string(p.Logistics),
		"pharmacy":   string(p.Pharmacy),
		"replaced":   replaced,
	})
	return p, at, nil
}

// Current devuelve el juego de trabajo o ErrNotIssued.
func (s *Service) Current() (Participants, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.issued {
		return Participants{}, time.Time{}, ErrNotIssued
	}
	return s.current, s.issuedAt, nil
}

// CurrentCustodians expone el juego de trabajo como custodios de lote.
func (s *Service) CurrentCustodians() (lots.Custodians, error) {
	p, _, err := s.Current()
	if err != nil {
		return lots.Custodians{}, err
	}
	return p.Custodians(), nil
}

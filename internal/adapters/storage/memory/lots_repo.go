package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"cold-chain-ledger/internal/domain/lots"
)

// lotRepo guarda copias profundas: nada de lo que entra o sale comparte historial.
// Update corre fn con el lock tomado; la escritura final es una sola asignación al mapa.
type lotRepo struct {
	mu    sync.RWMutex
	byID  map[string]lots.Lot
	order []string
}

func NewLotRepo() lots.Repository {
	return &lotRepo{
		byID: make(map[string]lots.Lot),
	}
}

func (r *lotRepo) Create(ctx context.Context, l lots.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(l.ID) == "" {
		return errors.New("lot id required")
	}
	if _, exists := r.byID[l.ID]; exists {
		return lots.ErrLotExists
	}
	r.byID[l.ID] = l.Clone()
	r.order = append(r.order, l.ID)
	return nil
}

func (r *lotRepo) GetByID(ctx context.Context, id string) (lots.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return lots.Lot{}, lots.ErrLotNotFound
	}
	return l.Clone(), nil
}

// List devuelve los lotes en orden de creación.
func (r *lotRepo) List(ctx context.Context) ([]lots.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]lots.Lot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *lotRepo) Update(ctx context.Context, id string, fn func(*lots.Lot) error) (lots.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok {
		return lots.Lot{}, lots.ErrLotNotFound
	}

	next := cur.Clone()
	if err := fn(&next); err != nil {
		return lots.Lot{}, err
	}
	if err := lots.CheckUpdate(cur, next); err != nil {
		return lots.Lot{}, err
	}

	r.byID[id] = next.Clone()
	return next, nil
}

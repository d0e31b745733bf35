package lots

import "sync"

// lotLocks serializa las mutaciones por lote. Lotes distintos no se bloquean entre sí.
type lotLocks struct {
	mu    sync.Mutex
	byLot map[string]*lotLock
}

type lotLock struct {
	mu   sync.Mutex
	refs int
}

func newLotLocks() *lotLocks {
	return &lotLocks{byLot: make(map[string]*lotLock)}
}

// lock toma el mutex del lote y devuelve la función para liberarlo.
// La entrada se elimina del mapa cuando nadie más la espera.
func (l *lotLocks) lock(id string) func() {
	l.mu.Lock()
	k, ok := l.byLot[id]
	if !ok {
		k = &lotLock{}
		l.byLot[id] = k
	}
	k.refs++
	l.mu.Unlock()

	k.mu.Lock()

	return func() {
		k.mu.Unlock()

		l.mu.Lock()
		k.refs--
		if k.refs == 0 {
			delete(l.byLot, id)
		}
		l.mu.Unlock()
	}
}

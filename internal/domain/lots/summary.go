package lots

import "time"

// LotSummary es la vista resumida de un lote.
type LotSummary struct {
	LotID       string
	Status      Status
	Breached    bool
	TempMin     float64
	TempMax     float64
	CreatedAt   time.Time
	DeliveredAt *time.Time

	Records    int
	OutOfRange int

	// Nil cuando el lote no tiene lecturas.
	MinObserved *float64
	MaxObserved *float64
	LastReading *time.Time
}

// Summarize es una función pura sobre el lote.
func Summarize(l Lot) LotSummary {
	s := LotSummary{
		LotID:       l.ID,
		Status:      l.Status,
		Breached:    l.Breached,
		TempMin:     l.TempMin,
		TempMax:     l.TempMax,
		CreatedAt:   l.CreatedAt,
		DeliveredAt: l.DeliveredAt,
		Records:     len(l.History),
	}

	for i, r := range l.History {
		if r.OutOfRange {
			s.OutOfRange++
		}
		v := r.Value
		if i == 0 {
			lo, hi := v, v
			s.MinObserved, s.MaxObserved = &lo, &hi
		} else {
			if v < *s.MinObserved {
				*s.MinObserved = v
			}
			if v > *s.MaxObserved {
				*s.MaxObserved = v
			}
		}
	}
	if n := len(l.History); n > 0 {
		t := l.History[n-1].RecordedAt
		s.LastReading = &t
	}
	return s
}

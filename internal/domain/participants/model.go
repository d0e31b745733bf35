package participants

import (
	"strings"

	"cold-chain-ledger/internal/domain/lots"
)

// Participants es el juego de identificadores emitido para los tres roles.
type Participants struct {
	Laboratory lots.ParticipantID
	Logistics  lots.ParticipantID
	Pharmacy   lots.ParticipantID
}

// Custodians convierte el juego emitido en los custodios de un lote.
func (p Participants) Custodians() lots.Custodians {
	return lots.Custodians{
		Laboratory: p.Laboratory,
		Logistics:  p.Logistics,
		Pharmacy:   p.Pharmacy,
	}
}

// Valid exige los tres identificadores presentes y distintos.
func (p Participants) Valid() bool {
	lab := strings.TrimSpace(string(p.Laboratory))
	log := strings.TrimSpace(string(p.Logistics))
	pha := strings.TrimSpace(string(p.Pharmacy))
	if lab == "" || log == "" || pha == "" {
		return false
	}
	return lab != log && lab != pha && log != pha
}

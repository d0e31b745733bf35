package local

import (
	"context"

	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/domain/participants"

	"github.com/google/uuid"
)

// Directory emite identificadores locales con uuid.
// Sirve para dev y tests: no es un mecanismo de identidad ni de seguridad.
type Directory struct{}

func NewDirectory() *Directory {
	return &Directory{}
}

func (d *Directory) Issue(ctx context.Context) (participants.Participants, error) {
	return participants.Participants{
		Laboratory: lots.ParticipantID("lab-" + uuid.NewString()),
		Logistics:  lots.ParticipantID("log-" + uuid.NewString()),
		Pharmacy:   lots.ParticipantID("pha-" + uuid.NewString()),
	}, nil
}

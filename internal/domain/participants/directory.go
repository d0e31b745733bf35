package participants

import "context"

// Directory emite identificadores opacos para Laboratory, Logistics y Pharmacy.
// Cómo se generan queda fuera del ledger (servicio externo de identidad/credenciales).
type Directory interface {
	Issue(ctx context.Context) (Participants, error)
}

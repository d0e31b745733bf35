package lots

import "context"

// Repository es el contrato de persistencia del ledger.
//
//   - Create devuelve ErrLotExists si el id ya existe.
//   - GetByID y Update devuelven ErrLotNotFound si no existe.
//   - List devuelve los lotes en orden de creación.
//   - Update es un read-modify-write transaccional: fn recibe una copia del lote,
//     y si devuelve nil el resultado se guarda como una sola unidad. Debe rechazar
//     con CheckUpdate cualquier cambio que altere el historial, revierta la ruptura
//     o toque campos inmutables.
type Repository interface {
	Create(ctx context.Context, l Lot) error
	GetByID(ctx context.Context, id string) (Lot, error)
	List(ctx context.Context) ([]Lot, error)
	Update(ctx context.Context, id string, fn func(*Lot) error) (Lot, error)
}

// CheckUpdate valida el resultado de un Update:
//   - el historial solo crece y los registros ya persistidos no cambian;
//   - la ruptura no se revierte;
//   - id, fecha de creación, rango y custodios no cambian;
//   - delivered es terminal.
func CheckUpdate(before, after Lot) error {
	if len(after.History) < len(before.History) {
		return ErrHistoryRewrite
	}
	for i := range before.History {
		if before.History[i] != after.History[i] {
			return ErrHistoryRewrite
		}
	}
	if before.Breached && !after.Breached {
		return ErrHistoryRewrite
	}
	if after.ID != before.ID ||
		!after.CreatedAt.Equal(before.CreatedAt) ||
		after.TempMin != before.TempMin ||
		after.TempMax != before.TempMax ||
		after.Custodians != before.Custodians {
		return ErrImmutableChange
	}
	if before.Status == StatusDelivered && after.Status != StatusDelivered {
		return ErrImmutableChange
	}
	if before.DeliveredAt != nil && (after.DeliveredAt == nil || !after.DeliveredAt.Equal(*before.DeliveredAt)) {
		return ErrImmutableChange
	}
	return nil
}

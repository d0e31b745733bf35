package lots

import (
	"strings"
	"time"
)

// Status es el estado del ciclo de vida de un lote.
// @Enum active, compromised, delivered
type Status string

const (
	StatusActive      Status = "active"
	StatusCompromised Status = "compromised"
	StatusDelivered   Status = "delivered"
)

// Role identifica al custodio que registra una lectura.
// @Enum laboratory, logistics, pharmacy
type Role string

const (
	RoleLaboratory Role = "laboratory"
	RoleLogistics  Role = "logistics"
	RolePharmacy   Role = "pharmacy"
)

// Roles en orden de custodia.
var Roles = []Role{RoleLaboratory, RoleLogistics, RolePharmacy}

// ParseRole acepta los roles canónicos y sus alias en español
// (laboratorio, logistica, farmacia), sin distinguir mayúsculas.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "laboratory", "laboratorio":
		return RoleLaboratory, true
	case "logistics", "logistica", "logística":
		return RoleLogistics, true
	case "pharmacy", "farmacia":
		return RolePharmacy, true
	default:
		return "", false
	}
}

// ParticipantID es un token opaco emitido por el directorio de participantes.
// El ledger solo lo compara; nunca interpreta su estructura.
type ParticipantID string

// Custodians son los tres participantes capturados al crear el lote.
type Custodians struct {
	Laboratory ParticipantID
	Logistics  ParticipantID
	Pharmacy   ParticipantID
}

// For devuelve el custodio asignado a un rol.
func (c Custodians) For(r Role) ParticipantID {
	switch r {
	case RoleLaboratory:
		return c.Laboratory
	case RoleLogistics:
		return c.Logistics
	case RolePharmacy:
		return c.Pharmacy
	default:
		return ""
	}
}

// missing devuelve el primer rol sin custodio, o "" si están los tres.
func (c Custodians) missing() Role {
	for _, r := range Roles {
		if strings.TrimSpace(string(c.For(r))) == "" {
			return r
		}
	}
	return ""
}

// TemperatureRecord es un hecho inmutable agregado al historial de un lote.
type TemperatureRecord struct {
	Value      float64       `json:"value"`
	RecordedAt time.Time     `json:"recorded_at"`
	RecordedBy Role          `json:"recorded_by"`
	Custodian  ParticipantID `json:"custodian"`
	Location   string        `json:"location,omitempty"`

	// OutOfRange se calcula una sola vez al registrar y nunca se recalcula.
	OutOfRange bool `json:"out_of_range"`
}

// Lot es la unidad de custodia.
type Lot struct {
	ID        string
	CreatedAt time.Time
	Status    Status

	TempMin float64
	TempMax float64

	Custodians Custodians

	History  []TemperatureRecord
	Breached bool

	DeliveredAt *time.Time
}

// Clone devuelve una copia profunda; el historial nunca se comparte entre copias.
func (l Lot) Clone() Lot {
	out := l
	if l.History != nil {
		out.History = make([]TemperatureRecord, len(l.History))
		copy(out.History, l.History)
	}
	if l.DeliveredAt != nil {
		t := *l.DeliveredAt
		out.DeliveredAt = &t
	}
	return out
}

// InEnvelope indica si v cae dentro de [TempMin, TempMax]; los bordes son válidos.
func (l Lot) InEnvelope(v float64) bool {
	return !OutOfRange(v, l.TempMin, l.TempMax)
}

// OutOfRange es la regla de ruptura de cadena de frío.
func OutOfRange(v, min, max float64) bool {
	return v < min || v > max
}

// Package simulator genera lecturas de sensores IoT para recorrer la cadena de
// frío de un lote: laboratorio, logística y farmacia.
package simulator

import (
	"math"
	"math/rand/v2"

	"cold-chain-ledger/internal/domain/lots"
)

// Rango de una lectura con falla (temperatura peligrosa).
const (
	FaultMin = 8.0
	FaultMax = 15.0
)

// Sensor produce lecturas alrededor de Base ± Variation. Con probabilidad
// FaultProbability la lectura cae en [FaultMin, FaultMax].
type Sensor struct {
	Role             lots.Role
	Base             float64
	Variation        float64
	FaultProbability float64
	Location         string
}

// Read devuelve la lectura redondeada a un decimal y si fue una falla simulada.
func (s Sensor) Read(rng *rand.Rand) (float64, bool) {
	if rng.Float64() < s.FaultProbability {
		return round1(uniform(rng, FaultMin, FaultMax)), true
	}
	return round1(s.Base + uniform(rng, -s.Variation, s.Variation)), false
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

package simulator

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cold-chain-ledger/internal/domain/lots"

	"gopkg.in/yaml.v3"
)

// Phase es un tramo de custodia: qué rol registra, alrededor de qué temperatura y dónde.
type Phase struct {
	Role      lots.Role `yaml:"role"`
	Base      float64   `yaml:"base"`
	Variation float64   `yaml:"variation"`
	Location  string    `yaml:"location"`

	// 0 = usa ReadingsPerPhase del escenario.
	Readings int `yaml:"readings,omitempty"`
}

type Scenario struct {
	TempMin          float64       `yaml:"temp_min"`
	TempMax          float64       `yaml:"temp_max"`
	ReadingsPerPhase int           `yaml:"readings_per_phase"`
	Interval         time.Duration `yaml:"interval"`
	FaultProbability float64       `yaml:"fault_probability"`
	Phases           []Phase       `yaml:"phases"`
}

// DefaultScenario es la cadena de una vacuna con rango -8 °C a +2 °C.
func DefaultScenario() Scenario {
	return Scenario{
		TempMin:          -8,
		TempMax:          2,
		ReadingsPerPhase: 10,
		Interval:         15 * time.Second,
		FaultProbability: 0.05,
		Phases: []Phase{
			{Role: lots.RoleLaboratory, Base: -5, Variation: 2, Location: "Laboratorio Central - Cámara Fría"},
			{Role: lots.RoleLogistics, Base: -3, Variation: 3, Location: "Camión Refrigerado - En tránsito"},
			{Role: lots.RolePharmacy, Base: 4, Variation: 2, Location: "Farmacia - Refrigerador Principal"},
		},
	}
}

// LoadScenario parte del escenario por defecto y aplica lo que defina el archivo.
// Si el archivo trae phases, reemplaza las fases por defecto completas.
func LoadScenario(path string) (Scenario, error) {
	sc := DefaultScenario()

	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read %s: %w", path, err)
	}

	var file Scenario
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Scenario{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	merge(&sc, data, file)

	if err := sc.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// merge copia solo las keys presentes en el YAML, así un 0 explícito
// (p.ej. fault_probability: 0) no se confunde con "no definido".
func merge(dst *Scenario, data []byte, file Scenario) {
	var present map[string]any
	_ = yaml.Unmarshal(data, &present)

	if _, ok := present["temp_min"]; ok {
		dst.TempMin = file.TempMin
	}
	if _, ok := present["temp_max"]; ok {
		dst.TempMax = file.TempMax
	}
	if _, ok := present["readings_per_phase"]; ok {
		dst.ReadingsPerPhase = file.ReadingsPerPhase
	}
	if _, ok := present["interval"]; ok {
		dst.Interval = file.Interval
	}
	if _, ok := present["fault_probability"]; ok {
		dst.FaultProbability = file.FaultProbability
	}
	if len(file.Phases) > 0 {
		dst.Phases = file.Phases
	}
}

func (s *Scenario) Validate() error {
	if s.TempMin > s.TempMax {
		return fmt.Errorf("temp_min %.1f is greater than temp_max %.1f", s.TempMin, s.TempMax)
	}
	if s.ReadingsPerPhase <= 0 {
		return errors.New("readings_per_phase must be positive")
	}
	if s.Interval < 0 {
		return errors.New("interval must not be negative")
	}
	if s.FaultProbability < 0 || s.FaultProbability > 1 {
		return errors.New("fault_probability must be between 0 and 1")
	}
	if len(s.Phases) == 0 {
		return errors.New("at least one phase is required")
	}
	for i := range s.Phases {
		p := &s.Phases[i]
		role, ok := lots.ParseRole(string(p.Role))
		if !ok {
			return fmt.Errorf("phase %d: unknown role %q", i+1, p.Role)
		}
		p.Role = role
		if p.Variation < 0 {
			return fmt.Errorf("phase %d: variation must not be negative", i+1)
		}
		if p.Readings < 0 {
			return fmt.Errorf("phase %d: readings must not be negative", i+1)
		}
	}
	return nil
}

// Sensors arma un sensor por fase, en el orden del escenario.
func (s Scenario) Sensors() []Sensor {
	out := make([]Sensor, 0, len(s.Phases))
	for _, p := range s.Phases {
		out = append(out, Sensor{
			Role:             p.Role,
			Base:             p.Base,
			Variation:        p.Variation,
			FaultProbability: s.FaultProbability,
			Location:         p.Location,
		})
	}
	return out
}

func (s Scenario) readings(p Phase) int {
	if p.Readings > 0 {
		return p.Readings
	}
	return s.ReadingsPerPhase
}

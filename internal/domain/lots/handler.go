package lots

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CustodianSource entrega los custodios vigentes cuando el request de creación
// no los trae (el juego de trabajo emitido por /participants).
type CustodianSource interface {
	CurrentCustodians() (Custodians, error)
}

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func RegisterRoutes(r chi.Router, svc *Service, custodians CustodianSource) {
	r.Route("/lots", func(lr chi.Router) {
		lr.Post("/", createLotHandler(svc, custodians))
		lr.Get("/", listLotsHandler(svc))

		lr.Route("/{lotID}", func(one chi.Router) {
			one.Get("/", getLotHandler(svc))
			one.Get("/summary", lotSummaryHandler(svc))
			one.Post("/deliver", deliverLotHandler(svc))

			// Lecturas de temperatura
			one.Post("/readings", recordReadingHandler(svc))
			one.Get("/readings", listReadingsHandler(svc))
		})
	})
}

type custodiansDTO struct {
	Laboratory string `json:"laboratory" validate:"required"`
	Logistics  string `json:"logistics" validate:"required"`
	Pharmacy   string `json:"pharmacy" validate:"required"`
}

type createLotRequest struct {
	ID string `json:"id" validate:"required"`
	// Punteros: 0 °C es un límite válido y hay que distinguirlo de "no enviado".
	TempMin *float64 `json:"temp_min" validate:"required"`
	TempMax *float64 `json:"temp_max" validate:"required"`

	// Opcional: si no viene se usan los participantes vigentes.
	Custodians *custodiansDTO `json:"custodians,omitempty"`
}

type recordReadingRequest struct {
	Value      *float64 `json:"value" validate:"required"`
	RecordedBy string   `json:"recorded_by" validate:"required"`
	Location   string   `json:"location" validate:"max=200"`
}

type lotResponse struct {
	ID          string              `json:"id"`
	Status      Status              `json:"status"`
	Breached    bool                `json:"breached"`
	TempMin     float64             `json:"temp_min"`
	TempMax     float64             `json:"temp_max"`
	Custodians  custodiansDTO       `json:"custodians"`
	History     []TemperatureRecord `json:"history"`
	CreatedAt   time.Time           `json:"created_at"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
}

type lotListItem struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Breached  bool      `json:"breached"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"created_at"`
}

type summaryResponse struct {
	LotID       string     `json:"lot_id"`
	Status      Status     `json:"status"`
	Breached    bool       `json:"breached"`
	TempMin     float64    `json:"temp_min"`
	TempMax     float64    `json:"temp_max"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Records     int        `json:"records"`
	OutOfRange  int        `json:"out_of_range"`
	MinObserved *float64   `json:"min_observed,omitempty"`
	MaxObserved *float64   `json:"max_observed,omitempty"`
	LastReading *time.Time `json:"last_reading,omitempty"`
}

// createLotHandler godoc
// @Summary Crear lote
// @Description Registra un lote con su rango de temperatura. Si no se envían custodios se usan los participantes vigentes.
// @Tags lots
// @Accept json
// @Produce json
// @Param body body createLotRequest true "Lote"
// @Success 201 {object} lotResponse
// @Failure 400 {string} string "invalid request"
// @Router /lots [post]
func createLotHandler(svc *Service, source CustodianSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, validationMessage(err), http.StatusBadRequest)
			return
		}

		var c Custodians
		if req.Custodians != nil {
			c = Custodians{
				Laboratory: ParticipantID(req.Custodians.Laboratory),
				Logistics:  ParticipantID(req.Custodians.Logistics),
				Pharmacy:   ParticipantID(req.Custodians.Pharmacy),
			}
		} else {
			if source == nil {
				http.Error(w, "custodians required", http.StatusBadRequest)
				return
			}
			cur, err := source.CurrentCustodians()
			if err != nil {
				http.Error(w, "custodians required: issue participants first", http.StatusBadRequest)
				return
			}
			c = cur
		}

		l, err := svc.CreateLot(r.Context(), CreateInput{
			ID:         req.ID,
			TempMin:    *req.TempMin,
			TempMax:    *req.TempMax,
			Custodians: c,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLotResponse(l))
	}
}

// listLotsHandler godoc
// @Summary Listar lotes
// @Description Lotes en orden de creación.
// @Tags lots
// @Produce json
// @Success 200 {array} lotListItem
// @Router /lots [get]
func listLotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListLots(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]lotListItem, 0, len(items))
		for _, l := range items {
			out = append(out, lotListItem{
				ID:        l.ID,
				Status:    l.Status,
				Breached:  l.Breached,
				Records:   len(l.History),
				CreatedAt: l.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getLotHandler godoc
// @Summary Obtener lote
// @Tags lots
// @Produce json
// @Param lotID path string true "Lot ID"
// @Success 200 {object} lotResponse
// @Failure 404 {string} string "lot not found"
// @Router /lots/{lotID} [get]
func getLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.GetLot(r.Context(), chi.URLParam(r, "lotID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLotResponse(l))
	}
}

// recordReadingHandler godoc
// @Summary Registrar temperatura
// @Description Agrega una lectura al historial. Una lectura fuera de rango marca la ruptura de la cadena de frío.
// @Tags readings
// @Accept json
// @Produce json
// @Param lotID path string true "Lot ID"
// @Param body body recordReadingRequest true "Lectura"
// @Success 201 {object} lotResponse
// @Failure 400 {string} string "invalid request"
// @Failure 404 {string} string "lot not found"
// @Router /lots/{lotID}/readings [post]
func recordReadingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordReadingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, validationMessage(err), http.StatusBadRequest)
			return
		}

		l, err := svc.RecordTemperature(r.Context(), chi.URLParam(r, "lotID"), RecordInput{
			Value:      *req.Value,
			RecordedBy: Role(req.RecordedBy),
			Location:   req.Location,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toLotResponse(l))
	}
}

// listReadingsHandler godoc
// @Summary Historial de lecturas
// @Description Historial en orden de registro. Filtros opcionales.
// @Tags readings
// @Produce json
// @Param lotID path string true "Lot ID"
// @Param out_of_range query bool false "Solo lecturas fuera de rango"
// @Param role query string false "laboratory | logistics | pharmacy"
// @Param limit query int false "Máximo de lecturas"
// @Success 200 {array} TemperatureRecord
// @Failure 400 {string} string "invalid query"
// @Failure 404 {string} string "lot not found"
// @Router /lots/{lotID}/readings [get]
func listReadingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var f HistoryFilter
		if v := strings.TrimSpace(q.Get("out_of_range")); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "out_of_range must be a boolean", http.StatusBadRequest)
				return
			}
			f.OutOfRangeOnly = b
		}
		if v := strings.TrimSpace(q.Get("role")); v != "" {
			role, ok := ParseRole(v)
			if !ok {
				http.Error(w, "unknown role", http.StatusBadRequest)
				return
			}
			f.Role = role
		}
		if v := strings.TrimSpace(q.Get("limit")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			f.Limit = n
		}

		recs, err := svc.History(r.Context(), chi.URLParam(r, "lotID"), f)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// deliverLotHandler godoc
// @Summary Marcar entregado
// @Description Cierra el lote. Idempotente.
// @Tags lots
// @Produce json
// @Param lotID path string true "Lot ID"
// @Success 200 {object} lotResponse
// @Failure 404 {string} string "lot not found"
// @Router /lots/{lotID}/deliver [post]
func deliverLotHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := svc.MarkDelivered(r.Context(), chi.URLParam(r, "lotID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLotResponse(l))
	}
}

// lotSummaryHandler godoc
// @Summary Resumen del lote
// @Tags lots
// @Produce json
// @Param lotID path string true "Lot ID"
// @Success 200 {object} summaryResponse
// @Failure 404 {string} string "lot not found"
// @Router /lots/{lotID}/summary [get]
func lotSummaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := svc.Summary(r.Context(), chi.URLParam(r, "lotID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaryResponse{
			LotID:       s.LotID,
			Status:      s.Status,
			Breached:    s.Breached,
			TempMin:     s.TempMin,
			TempMax:     s.TempMax,
			CreatedAt:   s.CreatedAt,
			DeliveredAt: s.DeliveredAt,
			Records:     s.Records,
			OutOfRange:  s.OutOfRange,
			MinObserved: s.MinObserved,
			MaxObserved: s.MaxObserved,
			LastReading: s.LastReading,
		})
	}
}

func toLotResponse(l Lot) lotResponse {
	h := l.History
	if h == nil {
		h = []TemperatureRecord{}
	}
	return lotResponse{
		ID:       l.ID,
		Status:   l.Status,
		Breached: l.Breached,
		TempMin:  l.TempMin,
		TempMax:  l.TempMax,
		Custodians: custodiansDTO{
			Laboratory: string(l.Custodians.Laboratory),
			Logistics:  string(l.Custodians.Logistics),
			Pharmacy:   string(l.Custodians.Pharmacy),
		},
		History:     h,
		CreatedAt:   l.CreatedAt,
		DeliveredAt: l.DeliveredAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// validationMessage arma "campo: regla" con el primer error del validator.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid " + fe.Field() + ": " + fe.Tag()
	}
	return "invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

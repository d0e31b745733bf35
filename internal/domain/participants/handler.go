package participants

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/participants", func(pr chi.Router) {
		pr.Post("/", issueParticipantsHandler(svc))
		pr.Get("/", currentParticipantsHandler(svc))
	})
}

// participantsResponse es el juego de identificadores vigente.
type participantsResponse struct {
	Laboratory string    `json:"laboratory"`
	Logistics  string    `json:"logistics"`
	Pharmacy   string    `json:"pharmacy"`
	IssuedAt   time.Time `json:"issued_at"`
}

// issueParticipantsHandler godoc
// @Summary Emitir participantes
// @Description Pide al directorio tres identificadores opacos (laboratorio, logística, farmacia) y los deja como juego de trabajo. Los lotes ya creados conservan sus custodios.
// @Tags participants
// @Produce json
// @Success 201 {object} participantsResponse
// @Failure 502 {string} string "directory error"
// @Router /participants [post]
func issueParticipantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, at, err := svc.Issue(r.Context())
		if err != nil {
			http.Error(w, "directory error", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusCreated, toParticipantsResponse(p, at))
	}
}

// currentParticipantsHandler godoc
// @Summary Participantes vigentes
// @Description Devuelve el juego de trabajo emitido más recientemente.
// @Tags participants
// @Produce json
// @Success 200 {object} participantsResponse
// @Failure 404 {string} string "participants not issued"
// @Router /participants [get]
func currentParticipantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, at, err := svc.Current()
		if err != nil {
			if errors.Is(err, ErrNotIssued) {
				http.Error(w, "participants not issued", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toParticipantsResponse(p, at))
	}
}

func toParticipantsResponse(p Participants, at time.Time) participantsResponse {
	return participantsResponse{
		Laboratory: string(p.Laboratory),
		Logistics:  string(p.Logistics),
		Pharmacy:   string(p.Pharmacy),
		IssuedAt:   at,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

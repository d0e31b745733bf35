package simulator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/domain/participants"
	"cold-chain-ledger/internal/platform/httpclient"
)

// Ledger son las operaciones que el simulador necesita del ledger.
type Ledger interface {
	IssueParticipants(ctx context.Context) error
	CreateLot(ctx context.Context, id string, tempMin, tempMax float64) error
	RecordTemperature(ctx context.Context, lotID string, value float64, role lots.Role, location string) error
	MarkDelivered(ctx context.Context, lotID string) error
	Summary(ctx context.Context, lotID string) (LotSummary, error)
}

// LotSummary es el resumen que se imprime al final de cada lote.
type LotSummary struct {
	LotID       string   `json:"lot_id" yaml:"lot_id"`
	Status      string   `json:"status" yaml:"status"`
	Breached    bool     `json:"breached" yaml:"breached"`
	TempMin     float64  `json:"temp_min" yaml:"temp_min"`
	TempMax     float64  `json:"temp_max" yaml:"temp_max"`
	Records     int      `json:"records" yaml:"records"`
	OutOfRange  int      `json:"out_of_range" yaml:"out_of_range"`
	MinObserved *float64 `json:"min_observed,omitempty" yaml:"min_observed,omitempty"`
	MaxObserved *float64 `json:"max_observed,omitempty" yaml:"max_observed,omitempty"`
}

// HTTPLedger habla con la API del ledger.
type HTTPLedger struct {
	c *httpclient.Client
}

func NewHTTPLedger(baseURL string, timeout time.Duration) (*HTTPLedger, error) {
	c, err := httpclient.NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("ledger api url required")
	}
	return &HTTPLedger{c: c}, nil
}

func (h *HTTPLedger) IssueParticipants(ctx context.Context) error {
	return h.c.DoJSON(ctx, http.MethodPost, "/participants", nil, nil, nil)
}

func (h *HTTPLedger) CreateLot(ctx context.Context, id string, tempMin, tempMax float64) error {
	body := map[string]any{"id": id, "temp_min": tempMin, "temp_max": tempMax}
	return h.c.DoJSON(ctx, http.MethodPost, "/lots", nil, body, nil)
}

func (h *HTTPLedger) RecordTemperature(ctx context.Context, lotID string, value float64, role lots.Role, location string) error {
	body := map[string]any{"value": value, "recorded_by": string(role), "location": location}
	return h.c.DoJSON(ctx, http.MethodPost, lotPath(lotID, "/readings"), nil, body, nil)
}

func (h *HTTPLedger) MarkDelivered(ctx context.Context, lotID string) error {
	return h.c.DoJSON(ctx, http.MethodPost, lotPath(lotID, "/deliver"), nil, nil, nil)
}

func (h *HTTPLedger) Summary(ctx context.Context, lotID string) (LotSummary, error) {
	var s LotSummary
	err := h.c.DoJSON(ctx, http.MethodGet, lotPath(lotID, "/summary"), nil, nil, &s)
	return s, err
}

func lotPath(lotID, suffix string) string {
	return "/lots/" + url.PathEscape(lotID) + suffix
}

// InProcess usa los servicios directamente, sin HTTP.
type InProcess struct {
	Lots         *lots.Service
	Participants *participants.Service
}

func (p InProcess) IssueParticipants(ctx context.Context) error {
	_, _, err := p.Participants.Issue(ctx)
	return err
}

func (p InProcess) CreateLot(ctx context.Context, id string, tempMin, tempMax float64) error {
	c, err := p.Participants.CurrentCustodians()
	if err != nil {
		return err
	}
	_, err = p.Lots.CreateLot(ctx, lots.CreateInput{ID: id, TempMin: tempMin, TempMax: tempMax, Custodians: c})
	return err
}

func (p InProcess) RecordTemperature(ctx context.Context, lotID string, value float64, role lots.Role, location string) error {
	_, err := p.Lots.RecordTemperature(ctx, lotID, lots.RecordInput{Value: value, RecordedBy: role, Location: location})
	return err
}

func (p InProcess) MarkDelivered(ctx context.Context, lotID string) error {
	_, err := p.Lots.MarkDelivered(ctx, lotID)
	return err
}

func (p InProcess) Summary(ctx context.Context, lotID string) (LotSummary, error) {
	s, err := p.Lots.Summary(ctx, lotID)
	if err != nil {
		return LotSummary{}, err
	}
	return LotSummary{
		LotID:       s.LotID,
		Status:      string(s.Status),
		Breached:    s.Breached,
		TempMin:     s.TempMin,
		TempMax:     s.TempMax,
		Records:     s.Records,
		OutOfRange:  s.OutOfRange,
		MinObserved: s.MinObserved,
		MaxObserved: s.MaxObserved,
	}, nil
}

package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cold-chain-ledger/internal/domain/lots"
	"cold-chain-ledger/internal/domain/participants"
	"cold-chain-ledger/internal/platform/httpclient"
)

var (
	ErrRegistryNotConfigured = errors.New("participants registry not configured")
	ErrRegistryUnauthorized  = errors.New("participants registry unauthorized")
	ErrRegistryUpstream      = errors.New("participants registry upstream error")
)

// Config del cliente del registro externo de participantes.
type Config struct {
	BaseURL string
	APIKey  string

	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Directory implementa participants.Directory contra un servicio externo de
// emisión de credenciales.
type Directory struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewDirectory(cfg Config) (*Directory, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrRegistryNotConfigured
	}
	c, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	return &Directory{
		http:         c,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

type issueRequest struct {
	Roles []string `json:"roles"`
}

type issueResponse struct {
	Participants map[string]string `json:"participants"`
}

func (d *Directory) Issue(ctx context.Context) (participants.Participants, error) {
	const issuePath = "/v1/participants"

	roles := make([]string, 0, len(lots.Roles))
	for _, r := range lots.Roles {
		roles = append(roles, string(r))
	}

	var out issueResponse
	err := d.http.DoJSON(ctx, http.MethodPost, issuePath,
		map[string]string{d.apiKeyHeader: d.apiKey},
		issueRequest{Roles: roles},
		&out,
	)
	if err != nil {
		switch httpclient.StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return participants.Participants{}, ErrRegistryUnauthorized
		}
		return participants.Participants{}, fmt.Errorf("%w: %v", ErrRegistryUpstream, err)
	}

	p := participants.Participants{
		Laboratory: lots.ParticipantID(strings.TrimSpace(out.Participants[string(lots.RoleLaboratory)])),
		Logistics:  lots.ParticipantID(strings.TrimSpace(out.Participants[string(lots.RoleLogistics)])),
		Pharmacy:   lots.ParticipantID(strings.TrimSpace(out.Participants[string(lots.RolePharmacy)])),
	}
	if !p.Valid() {
		return participants.Participants{}, fmt.Errorf("%w: incomplete participants in response", ErrRegistryUpstream)
	}
	return p, nil
}

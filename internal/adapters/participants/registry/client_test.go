package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirectory_RequiresConfig(t *testing.T) {
	_, err := NewDirectory(Config{BaseURL: "http://registry"})
	assert.ErrorIs(t, err, ErrRegistryNotConfigured)
}

func TestDirectory_Issue(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/participants", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		var req issueRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"laboratory", "logistics", "pharmacy"}, req.Roles)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"participants": map[string]string{
				"laboratory": "0xLab1",
				"logistics":  "0xLog1",
				"pharmacy":   "0xFar1",
			},
		})
	}))
	defer ts.Close()

	d, err := NewDirectory(Config{BaseURL: ts.URL, APIKey: "secret"})
	require.NoError(t, err)

	p, err := d.Issue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xLab1", string(p.Laboratory))
	assert.Equal(t, "0xLog1", string(p.Logistics))
	assert.Equal(t, "0xFar1", string(p.Pharmacy))
}

func TestDirectory_Issue_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer ts.Close()

	d, err := NewDirectory(Config{BaseURL: ts.URL, APIKey: "bad"})
	require.NoError(t, err)

	_, err = d.Issue(context.Background())
	assert.ErrorIs(t, err, ErrRegistryUnauthorized)
}

func TestDirectory_Issue_IncompleteResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"participants": map[string]string{"laboratory": "0xLab1"},
		})
	}))
	defer ts.Close()

	d, err := NewDirectory(Config{BaseURL: ts.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, err = d.Issue(context.Background())
	assert.ErrorIs(t, err, ErrRegistryUpstream)
}

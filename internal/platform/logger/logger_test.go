package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Error, ParseLevel(" error "))
	assert.Equal(t, Info, ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("logfmt"))
}

func TestJSONLogger_WritesFieldsAndRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatJSON, App: "cold-chain-ledger", Out: &buf})

	l.Info("ignored", nil)
	l.With(map[string]any{"lot_id": "VAC-1", "": "dropped"}).Warn("temperature out of range", map[string]any{"value": 5.0})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "temperature out of range", entry["message"])
	assert.Equal(t, "cold-chain-ledger", entry["app"])
	assert.Equal(t, "VAC-1", entry["lot_id"])
	assert.Equal(t, 5.0, entry["value"])
	assert.NotContains(t, entry, "")
}

func TestTextLogger_IsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Out: &buf})

	l.Debug("lot created", map[string]any{"lot_id": "VAC-1"})

	out := buf.String()
	assert.Contains(t, out, "lot created")
	assert.Contains(t, out, "lot_id=VAC-1")
}

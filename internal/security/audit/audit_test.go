package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAction_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	al := NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx := WithRequestID(context.Background(), "req-1")
	al.LogBusinessProvisioning(ctx, "b1", "u1", "google", "created", "")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "audit", rec["log_type"])
	assert.Equal(t, "provision", rec["action"])
	assert.Equal(t, "business", rec["resource"])
	assert.Equal(t, "b1", rec["business_id"])
	assert.Equal(t, "req-1", rec["request_id"])
}

func TestRequestID_Missing(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
}

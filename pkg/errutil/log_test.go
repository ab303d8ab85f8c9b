// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode any
		wantCtx  bool
	}{
		{
			name:     "oops error carries code and context",
			err:      oops.Code("PRODUCT_NOT_FOUND").With("id", 7).Errorf("missing"),
			wantCode: "PRODUCT_NOT_FOUND",
			wantCtx:  true,
		},
		{
			name: "plain error",
			err:  errors.New("plain failure"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			errutil.LogError(context.Background(), logger, "request failed", tt.err, "path", "/admin")

			entry := decode(t, &buf)
			assert.Equal(t, "ERROR", entry["level"])
			assert.Equal(t, "request failed", entry["msg"])
			assert.Equal(t, "/admin", entry["path"])
			assert.Equal(t, tt.wantCode, entry["code"])
			_, hasCtx := entry["context"]
			assert.Equal(t, tt.wantCtx, hasCtx)
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "A_CODE", errutil.Code(oops.Code("A_CODE").Errorf("x")))
	assert.Empty(t, errutil.Code(errors.New("x")))
	assert.Empty(t, errutil.Code(nil))
}

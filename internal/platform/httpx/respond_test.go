package httpx

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProblemWritesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Problem(rec, 409, "Conflict", "stock is short")

	require.Equal(t, 409, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `"title":"Conflict"`)
	require.Contains(t, rec.Body.String(), `"status":409`)
}

func TestDecodeJSONCapsBody(t *testing.T) {
	var target struct {
		Notes string `json:"notes"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"notes":"ok"}`))
	require.NoError(t, DecodeJSON(req, &target))
	require.Equal(t, "ok", target.Notes)

	huge := `{"notes":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req = httptest.NewRequest("POST", "/", strings.NewReader(huge))
	require.Error(t, DecodeJSON(req, &target))
}

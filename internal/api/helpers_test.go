package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/palace-api/internal/api/shared"
)

// newJSONRequest builds a request with an optional JSON body, authenticated
// as userID unless it is uuid.Nil.
func newJSONRequest(t *testing.T, method, path string, body any, userID uuid.UUID) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
	}
	return req
}

// decodeBody unmarshals the recorded JSON response into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

// errorMessage returns the error field of a JSON error response.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp shared.ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

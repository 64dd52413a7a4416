package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the status and the {"error": ...} body
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body struct {
		Error string `json:"error"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, expectedMessage, body.Error, "error message mismatch")
}

// AssertSettings verifies a full settings map response
func AssertSettings(t *testing.T, resp *http.Response, expected map[string]string) {
	t.Helper()

	require.Equal(t, http.StatusOK, resp.StatusCode, "unexpected status code")
	var got map[string]string
	AssertJSONResponse(t, resp, &got)
	assert.Equal(t, expected, got)
}

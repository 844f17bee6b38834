package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGone = errors.New("thing gone")

func decodeErrorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Message
}

func TestHandleError_MatchesWrappedSentinel(t *testing.T) {
	mappings := []ErrorMapping{{Error: errGone, Status: http.StatusNotFound}}

	rec := httptest.NewRecorder()
	HandleError(context.Background(), rec, fmt.Errorf("%w: id-42", errGone), mappings)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "thing gone: id-42", decodeErrorMessage(t, rec))
}

func TestHandleError_MessageOverride(t *testing.T) {
	mappings := []ErrorMapping{{Error: errGone, Status: http.StatusConflict, Message: "already processed"}}

	rec := httptest.NewRecorder()
	HandleError(context.Background(), rec, errGone, mappings)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already processed", decodeErrorMessage(t, rec))
}

func TestHandleError_UnmappedIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(context.Background(), rec, errors.New("pool exhausted"), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internals stay out of the body.
	assert.Equal(t, "internal error", decodeErrorMessage(t, rec))
}

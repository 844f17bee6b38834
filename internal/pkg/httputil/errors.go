package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/campusworks/incident-desk/internal/pkg/ctxlog"
)

// ErrorMapping pairs a service sentinel with the HTTP status it should
// produce. A non-empty Message overrides the wrapped error text in the
// response body.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// HandleError writes the first mapping matched via errors.Is. Unmapped
// errors are logged through the request-scoped logger and answered with a
// bare 500.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if !errors.Is(err, m.Error) {
			continue
		}
		msg := m.Message
		if msg == "" {
			msg = err.Error()
		}
		Error(w, m.Status, msg)
		return
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}

package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/wordrooms/internal/api/apierr"
	"github.com/mcoot/wordrooms/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics before the response starts become a JSON INTERNAL_ERROR.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger.With(slog.String("component", "api")), apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}

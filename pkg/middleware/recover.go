package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/response"
)

// Recovery turns a downstream panic into a logged 500 instead of a dropped
// connection. Mount it outside reqid and Logger so it also covers them.
//
// http.ErrAbortHandler is re-raised untouched; that is net/http's own
// signal for deliberately torn-down responses (e.g. a client that went
// away mid-stream) and must reach the server loop.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Error("panic recovered",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"polyalpha/pkg/errors"
	"polyalpha/pkg/logger"
	"polyalpha/pkg/requestid"
)

// Recover turns a handler panic into a 500 JSON body and reports it.
func Recover(log *logger.Logger) func(http.Handler) http.Handler {
	log = log.With("middleware", "recover")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := errors.Wrapf(errors.ErrInternal, "panic: %v", rec)
				log.ErrorWithContext(r.Context(), err, map[string]string{
					"request_id": requestid.FromContext(r.Context()),
					"path":       r.URL.Path,
				})
				log.Debugw("panic stack", "stack", string(debug.Stack()))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error":   "Internal server error",
					"message": fmt.Sprint(rec),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

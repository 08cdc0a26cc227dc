package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"MINDBRIDGE_BACK-END/internal/utils"
)

// Recover turns a handler panic into a 500 JSON response
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				log.Printf("[http] panic on %s %s: %v\n%s", r.Method, r.URL.Path, v, debug.Stack())
				utils.WriteErrorResponse(w, http.StatusInternalServerError, "Internal Server Error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

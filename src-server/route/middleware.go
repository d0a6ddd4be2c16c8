package route

import (
	"errors"
	"log/slog"
	"net/http"

	"eventboard/src-server/nonce"
	"eventboard/src-server/utils"
)

// NonceMiddleware rejects form posts that don't carry a valid anti-forgery
// token for action in their "nonce" field.
func NonceMiddleware(as *utils.AppState, action string, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid form body"))
			return
		}
		if err := as.Nonce.Verify(r.PostForm.Get("nonce"), action); err != nil {
			if !errors.Is(err, nonce.ErrInvalid) {
				slog.Error("can't verify anti-forgery token", "action", action, "error", err)
			}
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("Invalid anti-forgery token"))
			return
		}
		next(w, r)
	}
}

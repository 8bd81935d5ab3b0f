package resolver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/reelkeeper/reel"
	"github.com/hazyhaar/reelkeeper/shield"
)

const maxMessageBody = 16 << 10

// Router exposes Handle over HTTP:
//
//	POST /v1/messages  Message in, Response out, always 200
//	GET  /healthz
func (r *Resolver) Router() http.Handler {
	mux := chi.NewRouter()
	for _, mw := range shield.DefaultAPIStack(maxMessageBody) {
		mux.Use(mw)
	}
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	mux.Post("/v1/messages", r.serveMessage)
	return mux
}

func (r *Resolver) serveMessage(w http.ResponseWriter, req *http.Request) {
	log := shield.GetLogger(req.Context())

	var msg reel.Message
	var resp reel.Response
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		resp = reel.Failed(fmt.Errorf("malformed message: %w", err))
	} else {
		resp = r.Handle(req.Context(), msg)
	}
	log.Info("resolver: message handled", "type", msg.Type, "success", resp.Success)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn("resolver: write response", "error", err)
	}
}

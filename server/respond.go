package server

import (
	"encoding/json"
	"net/http"

	"github.com/noauthlabs/noauth-server/internal/autherr"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError translates a failure into {status, {message, description}}.
// This is the single place an unclassified error becomes the generic
// 500; classified failures pass through untouched.
func writeError(w http.ResponseWriter, err error) {
	if !autherr.IsClassified(err) {
		log.Error().Err(err).Msg("unclassified failure")
	}
	classified := autherr.Classify(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(classified.Status)
	_ = json.NewEncoder(w).Encode(classified)
}

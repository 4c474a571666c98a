package server

import (
	"encoding/json"
	"net/http"

	"github.com/noauthlabs/noauth-server/auth"
)

// AccessTokenHandler serves the grant endpoint: POST dispatches by
// grant_type, DELETE revokes the bearer token.
func (s *Server) AccessTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &auth.Request{
			Method:        r.Method,
			Authorization: parseAuthorization(r),
		}
		if r.Method == http.MethodPost {
			if err := json.NewDecoder(r.Body).Decode(&req.Body); err != nil {
				writeError(w, auth.ErrUnsupportedGrant)
				return
			}
		}

		response, err := s.auth.HandleToken(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		if response == nil {
			// revocation succeeded
			writeJSON(w, struct{}{})
			return
		}
		writeJSON(w, response)
	}
}

// TokenInfoHandler serves the introspection endpoint for a bearer token.
func (s *Server) TokenInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bearer := parseAuthorization(r).Bearer
		info, err := s.auth.TokenInfo(r.Context(), bearer)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, info)
	}
}

// RequireScopes is the middleware form of the scope guard for protected
// resources.
func (s *Server) RequireScopes(requiredScopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearer := parseAuthorization(r).Bearer
			if err := s.auth.Authorize(r.Context(), requiredScopes, bearer); err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/noauthlabs/noauth-server/auth"
	"github.com/noauthlabs/noauth-server/internal/config"
)

// Server exposes the token engine over HTTP. It owns no state beyond its
// dependencies; one instance serves all projects of the deployment.
type Server struct {
	config config.Config
	auth   *auth.Service
	router *mux.Router
}

func New(cfg config.Config, authService *auth.Service) *Server {
	s := &Server{
		config: cfg,
		auth:   authService,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.requestLogMiddleware, s.recoverMiddleware)
	s.router.HandleFunc("/access-token", s.AccessTokenHandler()).Methods(http.MethodPost, http.MethodDelete)
	s.router.HandleFunc("/token-info", s.TokenInfoHandler()).Methods(http.MethodGet)
}

// ProtectedHandler mounts a handler behind the scope guard for every
// method. Any-of semantics: the bearer session needs one of the
// required scopes.
func (s *Server) ProtectedHandler(path string, handler http.HandlerFunc, requiredScopes ...string) {
	s.router.Handle(path, s.RequireScopes(requiredScopes...)(handler))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

package main

import (
	"flag"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"geoquery/controllers"
	"geoquery/services"
	"geoquery/utils"
)

// Server wires the router, CORS layer and controller together
type Server struct {
	router     *mux.Router
	port       string
	controller *controllers.Controller
	logger     *zap.SugaredLogger
}

// NewServer creates a new server instance
func NewServer(port string, controller *controllers.Controller, logger *zap.SugaredLogger) *Server {
	return &Server{
		router:     mux.NewRouter(),
		port:       port,
		controller: controller,
		logger:     logger,
	}
}

// setupRoutes configures all endpoints
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.controller.IndexHandler).Methods("GET")
	s.router.HandleFunc("/health", s.controller.HealthHandler).Methods("GET")

	s.router.HandleFunc("/query", s.controller.QueryHandler).Methods("POST")

	s.router.HandleFunc("/sessions/{id}/history", s.controller.HistoryHandler).Methods("GET")
	s.router.HandleFunc("/sessions/{id}/state", s.controller.StateHandler).Methods("GET")
	s.router.HandleFunc("/sessions/{id}/view", s.controller.ViewStateHandler).Methods("PATCH")
	s.router.HandleFunc("/sessions/{id}/ui", s.controller.UIStateHandler).Methods("POST")
	s.router.HandleFunc("/sessions/{id}/reset", s.controller.ResetHandler).Methods("POST")
	s.router.HandleFunc("/sessions/{id}/export/csv", s.controller.ExportCSVHandler).Methods("GET")
	s.router.HandleFunc("/sessions/{id}/export/geojson", s.controller.ExportGeoJSONHandler).Methods("GET")
}

// Start configures and starts the HTTP server
func (s *Server) Start() error {
	s.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	handler := c.Handler(s.router)

	if !strings.HasPrefix(s.port, ":") {
		s.port = ":" + s.port
	}

	s.logger.Infof("Server starting on port %s", s.port)
	return http.ListenAndServe(s.port, handler)
}

func main() {
	var (
		port          = flag.String("port", "", "port to listen on (default $PORT or 8080)")
		endpointsFlag = flag.String("endpoints", "", "comma-separated backend base URLs (default $QUERY_ENDPOINTS)")
		timeout       = flag.Duration("timeout", 0, "per-endpoint attempt timeout (default $QUERY_TIMEOUT or 30s)")
		sessionTTL    = flag.Duration("session-ttl", 0, "idle session lifetime (default $SESSION_TTL or 2h)")
		enableDiscord = flag.Bool("discord", true, "enable the Discord bot when configured")
	)
	flag.Parse()

	if err := utils.LoadEnv(".env"); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	isProd := utils.GetEnv("GO_ENV", "development") == "production"
	logger := utils.NewLogger(utils.GetEnv("LOG_FILE", ""), isProd)
	defer logger.Sync()

	if *port == "" {
		*port = utils.GetEnv("PORT", "8080")
	}
	if *timeout == 0 {
		*timeout = utils.GetEnvAsDuration("QUERY_TIMEOUT", services.DefaultAttemptTimeout)
	}
	if *sessionTTL == 0 {
		*sessionTTL = utils.GetEnvAsDuration("SESSION_TTL", services.DefaultSessionTTL)
	}

	endpointList := *endpointsFlag
	if endpointList == "" {
		endpointList = utils.GetEnv("QUERY_ENDPOINTS", "")
	}
	var endpoints []string
	for _, e := range strings.Split(endpointList, ",") {
		if trimmed := strings.TrimSpace(e); trimmed != "" {
			endpoints = append(endpoints, strings.TrimRight(trimmed, "/"))
		}
	}
	if len(endpoints) == 0 {
		logger.Infow("No query endpoints configured, all queries will use synthetic data")
	}

	dispatcher := services.NewDispatcher(endpoints, *timeout, logger)
	sessions := services.NewSessionManager(*sessionTTL, logger)
	controller := controllers.NewController(dispatcher, sessions, logger)

	if err := controller.StartServices(*enableDiscord); err != nil {
		logger.Warnw("Background services failed to start", "error", err)
	}
	defer controller.StopServices()

	server := NewServer(*port, controller, logger)
	if err := server.Start(); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

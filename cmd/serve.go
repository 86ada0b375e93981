package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sizing HTTP API",
	Long:  "Serves pure sizing and validation endpoints; no store or vendor clients are needed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the sizing API routes.
func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Post("/v1/size", handleSize)
	r.Post("/v1/validate", handleValidate)

	return r
}

// sizeRequest is the shared input of the size and validate endpoints.
type sizeRequest struct {
	Revenue     float64 `json:"revenue"`
	Employees   int     `json:"employees"`
	DealSize    float64 `json:"deal_size"`
	Found       int     `json:"candidates_found"`
	HighQuality int     `json:"high_quality"`
	ActualSize  int     `json:"actual_size"` // validate only
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleSize(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Revenue < 0 || req.Employees < 0 || req.Found < 0 {
		http.Error(w, `{"error":"figures must be non-negative"}`, http.StatusBadRequest)
		return
	}

	report := buildSizeReport(req.Revenue, req.Employees, req.DealSize, req.Found, req.HighQuality)
	writeJSON(w, http.StatusOK, report)
}

func handleValidate(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.ActualSize < 0 {
		http.Error(w, `{"error":"actual_size must be non-negative"}`, http.StatusBadRequest)
		return
	}
	if req.HighQuality > req.Found {
		req.HighQuality = req.Found
	}

	candidates := make([]stubCandidate, req.Found)
	for i := range candidates {
		if i < req.HighQuality {
			candidates[i] = stubCandidate{score: 85, relevance: 0.8}
		} else {
			candidates[i] = stubCandidate{score: 40, relevance: 0.2}
		}
	}

	intel := buyergroup.CompanyIntelligence{Revenue: req.Revenue, EmployeeCount: req.Employees}
	constraint := buyergroup.DetermineOptimalSize(req.DealSize, intel, candidates)

	writeJSON(w, http.StatusOK, struct {
		Constraint     buyergroup.SizeConstraint `json:"constraint"`
		Validation     buyergroup.Validation     `json:"validation"`
		Recommendation buyergroup.Recommendation `json:"recommendation"`
	}{
		Constraint:     constraint,
		Validation:     buyergroup.ValidateSize(req.ActualSize, constraint),
		Recommendation: buyergroup.Recommend(req.ActualSize, constraint),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/sensorquote/internal/catalog"
	"github.com/Simplici0/sensorquote/internal/config"
	"github.com/Simplici0/sensorquote/internal/db"
	"github.com/Simplici0/sensorquote/internal/migrations"
	"github.com/Simplici0/sensorquote/internal/pricing"
	"github.com/Simplici0/sensorquote/internal/quote"
	"github.com/Simplici0/sensorquote/internal/seed"
)

const (
	shutdownTimeout = 10 * time.Second
	quoteValidity   = 30 * 24 * time.Hour
	maxBodyBytes    = 1 << 20
)

type server struct {
	logger     *zap.Logger
	store      catalog.Lister
	rules      pricing.Rules
	adminToken string
	now        func() time.Time

	snapshot atomic.Pointer[catalog.Snapshot]
	quoteSeq atomic.Int64
}

func newServer(logger *zap.Logger, store catalog.Lister, rules pricing.Rules, adminToken string) (*server, error) {
	s := &server{
		logger:     logger,
		store:      store,
		rules:      rules,
		adminToken: adminToken,
		now:        time.Now,
	}
	if _, err := s.reloadCatalog(); err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	cfg := config.Load()

	logger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings() {
		logger.Warn("config", zap.String("warning", w))
	}

	rules := pricing.DefaultRules
	threshold, err := pricing.ParseLengthThreshold(cfg.LengthThreshold)
	if err != nil {
		logger.Fatal("invalid PRICING_LENGTH_THRESHOLD", zap.Error(err))
	}
	rules.LengthThreshold = threshold

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer database.Close()

	if err := prepareDatabase(database, cfg, logger); err != nil {
		logger.Fatal("failed to prepare database", zap.Error(err))
	}

	srv, err := newServer(logger, catalog.NewStore(database), rules, cfg.AdminToken)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("env", cfg.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func prepareDatabase(database *sql.DB, cfg config.Config, logger *zap.Logger) error {
	if err := migrations.Up(database); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, err := migrations.Version(database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("schema ready", zap.Int64("version", version))

	if !cfg.SeedOnStart && !cfg.IsDev() {
		return nil
	}
	stats, err := seed.Run(database)
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	logger.Info("catalog seeded", zap.Int("inserts", stats.Inserts))
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/materials", s.handleMaterials)
		r.Get("/variants/{id}/price", s.handleVariantPrice)
		r.Get("/variants/{id}/options", s.handleVariantOptions)
		r.Post("/options/price", s.handleOptionPrice)
		r.Post("/quotes/preview", s.handleQuotePreview)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdminToken)
		r.Post("/catalog/reload", s.handleCatalogReload)
	})

	return r
}

type reloadStats struct {
	Families  int `json:"families"`
	Variants  int `json:"variants"`
	Materials int `json:"materials"`
	Options   int `json:"options"`
}

// reloadCatalog swaps in a fresh snapshot. In-flight requests keep the one
// they started with.
func (s *server) reloadCatalog() (reloadStats, error) {
	snap, err := catalog.Load(s.store)
	if err != nil {
		return reloadStats{}, err
	}
	s.snapshot.Store(snap)

	families, _ := snap.ListFamilies()
	variants, _ := snap.ListVariants()
	materials, _ := snap.ListMaterials()
	options, _ := snap.ListOptions()
	return reloadStats{
		Families:  len(families),
		Variants:  len(variants),
		Materials: len(materials),
		Options:   len(options),
	}, nil
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleMaterials(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot.Load()

	var (
		materials []catalog.Material
		err       error
	)
	if productType := r.URL.Query().Get("product_type"); productType != "" {
		materials, err = catalog.AvailableMaterials(snap, productType)
	} else {
		materials, err = snap.ListMaterials()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

func (s *server) handleVariantPrice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	length, err := parseLength(r.URL.Query().Get("length"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.rules.Calculate(s.snapshot.Load(), id, length, r.URL.Query().Get("material"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleVariantOptions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.snapshot.Load()
	variant, err := snap.GetVariant(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	family, err := snap.GetFamily(variant.FamilyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	options, err := catalog.CompatibleOptions(snap, variant, family)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"variant": variant,
		"family":  family,
		"options": options,
	})
}

type optionPriceRequest struct {
	Price     decimal.Decimal   `json:"price"`
	PriceType catalog.PriceType `json:"price_type"`
	Length    *float64          `json:"length,omitempty"`
}

func (s *server) handleOptionPrice(w http.ResponseWriter, r *http.Request) {
	var req optionPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Length != nil && *req.Length < 0 {
		writeJSONError(w, http.StatusBadRequest, "length must not be negative")
		return
	}

	price := pricing.CalculateOptionPrice(req.Price, req.PriceType, req.Length)
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"price": price})
}

type quotePreviewRequest struct {
	CustomerName string              `json:"customer_name"`
	Notes        string              `json:"notes"`
	Items        []quote.ItemRequest `json:"items"`
}

type quotePreviewResponse struct {
	Quote  quote.Quote  `json:"quote"`
	Totals quote.Totals `json:"totals"`
}

func (s *server) handleQuotePreview(w http.ResponseWriter, r *http.Request) {
	var req quotePreviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Items) == 0 {
		writeJSONError(w, http.StatusBadRequest, "at least one item is required")
		return
	}
	for i, item := range req.Items {
		if item.Length != nil && *item.Length < 0 {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("item %d: length must not be negative", i+1))
			return
		}
	}

	now := s.now().UTC()
	header := quote.Quote{
		Number:       quote.NewNumber(now, int(s.quoteSeq.Add(1))),
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
		CreatedAt:    now,
		ExpiresAt:    now.Add(quoteValidity),
	}

	q, err := quote.NewBuilder(s.snapshot.Load(), s.rules).BuildQuote(header, req.Items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quotePreviewResponse{Quote: q, Totals: q.Summary()})
}

func (s *server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reloadCatalog()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("catalog reloaded",
		zap.Int("variants", stats.Variants),
		zap.Int("materials", stats.Materials),
		zap.Int("options", stats.Options),
	)
	writeJSON(w, http.StatusOK, stats)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid variant id %q", raw)
	}
	return id, nil
}

func parseLength(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, fmt.Errorf("invalid length %q", raw)
	}
	return &v, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pricing.ErrMaterialNotAvailable),
		errors.Is(err, quote.ErrOptionNotCompatible),
		errors.Is(err, quote.ErrInvalidItem):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSONError(w, status, "internal error")
		return
	}
	writeJSONError(w, status, err.Error())
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

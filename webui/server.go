// Package webui 是面向人的展示层：单车打分表单与批量排序 JSON 编辑器。
//
// 与工具协议适配层不同，这里的效用与系数按 RoundPlaces 位小数四舍五入展示，
// 并附带说明文字区分默认系数与用户保存的系数。取整只发生在序列化时，不影响排序。
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/feature"
	"github.com/rushteam/evrank/logging"
	"github.com/rushteam/evrank/metrics"
	"github.com/rushteam/evrank/model"
	"github.com/rushteam/evrank/pkg/conv"
	"github.com/rushteam/evrank/rank"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const (
	NoteDefault  = "Using default coefficients"
	NoteResolved = "Using saved user preferences"

	// ErrInvalidJSON 是候选 JSON 无法解析时展示的错误文本。
	ErrInvalidJSON = "Invalid JSON format"
)

// Server 是 Web UI 的 HTTP 服务。
type Server struct {
	ranker      *rank.Ranker
	metrics     *metrics.Metrics
	logger      *log.Logger
	accessLog   io.Writer
	roundPlaces int
	router      *mux.Router
}

// Option Server 配置选项
type Option func(*Server)

// WithLogger 设置 logger
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrDiscard(l)
	}
}

// WithMetrics 挂载 /metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAccessLog 设置访问日志输出（默认 stderr）
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) {
		s.accessLog = w
	}
}

// WithRoundPlaces 设置展示小数位（默认 4）
func WithRoundPlaces(places int) Option {
	return func(s *Server) {
		s.roundPlaces = places
	}
}

func New(ranker *rank.Ranker, opts ...Option) *Server {
	s := &Server{
		ranker:      ranker,
		logger:      logging.Discard(),
		accessLog:   os.Stderr,
		roundPlaces: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/utility", s.handleUtility).Methods(http.MethodPost)
	r.HandleFunc("/api/best", s.handleBest).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}

// Handler 返回带访问日志与 panic 恢复的 handler。
func (s *Server) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(s.logger.StandardLog()))
	return handlers.LoggingHandler(s.accessLog, recovery(s.router))
}

// ListenAndServe 监听 addr，ctx 取消时优雅关闭。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web ui listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct {
		Form formDefaults
		Cars string
	}{Form: defaultForm, Cars: ExampleCars}
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("render index", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type utilityRequest struct {
	UserID       string `json:"user_id"`
	Price        any    `json:"price"`
	Range        any    `json:"range"`
	Efficiency   any    `json:"efficiency"`
	Acceleration any    `json:"acceleration"`
	FastCharge   any    `json:"fast_charge"`
	SeatCount    any    `json:"seat_count"`
}

type utilityResponse struct {
	UserID           string             `json:"user_id"`
	UtilityScore     float64            `json:"utility_score"`
	CoefficientsUsed map[string]float64 `json:"coefficients_used"`
	CarFeatures      map[string]any     `json:"car_features"`
	Note             string             `json:"note"`
}

type bestResponse struct {
	UserID           string             `json:"user_id"`
	BestCar          map[string]any     `json:"best_car"`
	AllCarsRanked    []map[string]any   `json:"all_cars_ranked"`
	CoefficientsUsed map[string]float64 `json:"coefficients_used"`
	Note             string             `json:"note"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleUtility(w http.ResponseWriter, r *http.Request) {
	userID, fields, err := parseUtilityRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	score, err := s.ranker.ScoreOne(r.Context(), userID, core.NewCandidate(fields))
	if err != nil {
		s.writeError(w, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, utilityResponse{
		UserID:           userID,
		UtilityScore:     conv.Round(score.Candidate.Utility, s.roundPlaces),
		CoefficientsUsed: conv.RoundMap(score.Coefficients, s.roundPlaces),
		CarFeatures:      fields,
		Note:             note(score.Source),
	})
}

func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	userID, carsJSON, err := parseBestRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cars, err := core.ParseCandidates([]byte(carsJSON))
	if err != nil {
		s.logger.Debug("invalid candidate json", "user_id", userID, "err", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInvalidJSON})
		return
	}

	result, err := s.ranker.RankMany(r.Context(), userID, cars)
	if err != nil {
		s.writeError(w, userID, err)
		return
	}

	ranked := make([]map[string]any, 0, len(result.Ranked))
	for _, c := range result.Ranked {
		ranked = append(ranked, s.roundedRecord(c))
	}
	writeJSON(w, http.StatusOK, bestResponse{
		UserID:           userID,
		BestCar:          s.roundedRecord(result.Best),
		AllCarsRanked:    ranked,
		CoefficientsUsed: conv.RoundMap(result.Coefficients, s.roundPlaces),
		Note:             note(result.Source),
	})
}

func (s *Server) roundedRecord(c *core.Candidate) map[string]any {
	rec := c.Record()
	rec[core.UtilityField] = conv.Round(c.Utility, s.roundPlaces)
	return rec
}

func (s *Server) writeError(w http.ResponseWriter, userID string, err error) {
	status := http.StatusBadRequest
	switch {
	case core.IsStoreUnavailable(err):
		status = http.StatusBadGateway
	case core.IsMalformedCoefficients(err), core.IsMissingCoefficient(err):
		status = http.StatusUnprocessableEntity
	}
	s.logger.Warn("scoring failed", "user_id", userID, "status", status, "err", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// parseUtilityRequest 支持 JSON body 与表单两种提交方式。
// 表单中的空字段视为缺失（按 0 处理），无法解析的数值原样保留，由 Scaler 报 InvalidFeatureValue。
func parseUtilityRequest(r *http.Request) (string, map[string]any, error) {
	if isJSON(r) {
		var req utilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", nil, errors.New(ErrInvalidJSON)
		}
		return req.UserID, map[string]any{
			"price":        req.Price,
			"range":        req.Range,
			"efficiency":   req.Efficiency,
			"acceleration": req.Acceleration,
			"fast_charge":  req.FastCharge,
			"seat_count":   req.SeatCount,
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", nil, err
	}
	fields := make(map[string]any, len(feature.Keys))
	for _, key := range feature.Keys {
		fields[key] = formNumber(r.PostForm.Get(key))
	}
	return r.PostForm.Get("user_id"), fields, nil
}

func parseBestRequest(r *http.Request) (string, string, error) {
	if isJSON(r) {
		var req struct {
			UserID string          `json:"user_id"`
			Cars   json.RawMessage `json:"cars"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", errors.New(ErrInvalidJSON)
		}
		return req.UserID, string(req.Cars), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", "", err
	}
	return r.PostForm.Get("user_id"), r.PostForm.Get("cars_json"), nil
}

func formNumber(v string) any {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if f, ok := conv.ParseFloat64(v); ok {
		return f
	}
	return v
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func note(source model.Source) string {
	if source == model.SourceResolved {
		return NoteResolved
	}
	return NoteDefault
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

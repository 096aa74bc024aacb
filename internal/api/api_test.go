package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"StockSignal/internal/analyzer"
	"StockSignal/internal/collector"
	"StockSignal/internal/metrics"
	"StockSignal/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type stubAnalyzer struct {
	report *model.Report
	err    error
}

func (s stubAnalyzer) Analyze(_ context.Context, ticker string) (*model.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	r := *s.report
	r.Ticker = strings.ToUpper(ticker)
	return &r, nil
}

func newTestRouter(a Analyzer) *gin.Engine {
	log := quietLogger()
	return NewRouter(&Config{
		AnalysisHandler: NewAnalysisHandler(a, nil, log),
		Metrics:         metrics.NewMetrics().Handler(),
		Log:             log,
	})
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(stubAnalyzer{}), http.MethodGet, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Stock Analysis API") {
		t.Fatalf("GET / = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestPreflight(t *testing.T) {
	rec := do(newTestRouter(stubAnalyzer{}), http.MethodOptions, "/analyze")
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS = %d, want 204", rec.Code)
	}
}

func TestAnalyzeReturnsReport(t *testing.T) {
	pred := 101.25
	a := stubAnalyzer{report: &model.Report{
		RunID:          "abc",
		PredictedPrice: &pred,
		TradeAction:    model.ActionBuy,
		TradeStatus:    "Mock buy of AAPL at $100.00",
		Data:           []model.ReportRow{{Date: "2024-01-02", Close: 100, VolumeSpike: 1, Score: 3}},
	}}
	rec := do(newTestRouter(a), http.MethodGet, "/analyze?ticker=aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["ticker"] != "AAPL" || body["predicted_price"] != 101.25 || body["trade_action"] != "buy" {
		t.Errorf("unexpected body %v", body)
	}
	data := body["data"].([]any)
	row := data[0].(map[string]any)
	if row["volume_spike"] != float64(1) || row["score"] != float64(3) {
		t.Errorf("unexpected row %v", row)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no ticker", analyzer.ErrNoTicker, http.StatusBadRequest},
		{"fetch", fmt.Errorf("%w: down", analyzer.ErrFetch), http.StatusBadGateway},
		{"timeout", fmt.Errorf("predictor: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"client gone", fmt.Errorf("%w for X from mock: %w", analyzer.ErrFetch, context.Canceled), 499},
		{"short", fmt.Errorf("features: %w", &model.InsufficientHistoryError{Component: "features", Have: 3, Need: 10}), http.StatusUnprocessableEntity},
		{"missing column", &model.MissingColumnError{Component: "indicators", Column: model.ColumnClose}, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(newTestRouter(stubAnalyzer{err: tt.err}), http.MethodGet, "/analyze?ticker=X")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["error"] != tt.err.Error() {
				t.Errorf("error = %q, want %q", body["error"], tt.err.Error())
			}
		})
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	a := analyzer.New(&collector.MockFetcher{Price: 100}, nil, analyzer.DefaultSettings(), quietLogger(), nil)
	rec := do(newTestRouter(a), http.MethodGet, "/analyze?ticker=spy")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var report model.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Ticker != "SPY" || len(report.Data) != 365 || report.RunID == "" {
		t.Errorf("unexpected report: ticker=%s rows=%d run=%q", report.Ticker, len(report.Data), report.RunID)
	}

	rec = do(newTestRouter(a), http.MethodGet, "/analyze")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing ticker status = %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	r := newTestRouter(stubAnalyzer{})
	if rec := do(r, http.MethodGet, "/history"); rec.Code != http.StatusBadRequest {
		t.Errorf("missing ticker status = %d", rec.Code)
	}
	rec := do(r, http.MethodGet, "/history?ticker=AAPL")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("history = %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(r, http.MethodGet, "/history?ticker=AAPL&limit=abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(newTestRouter(stubAnalyzer{}), http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("metrics = %d", rec.Code)
	}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"StockSignal/internal/analyzer"
	"StockSignal/internal/model"
	"StockSignal/internal/recorder"
)

// Analyzer produces a report for one ticker.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*model.Report, error)
}

// AnalysisHandler serves the analysis endpoints.
type AnalysisHandler struct {
	analyzer Analyzer
	recorder recorder.Recorder
	log      *logrus.Logger
}

func NewAnalysisHandler(a Analyzer, rec recorder.Recorder, log *logrus.Logger) *AnalysisHandler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AnalysisHandler{analyzer: a, recorder: rec, log: log}
}

// Health answers the root path.
func (h *AnalysisHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Stock Analysis API"})
}

// Analyze runs the pipeline for ?ticker= and returns the report.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	ticker := c.Query("ticker")
	report, err := h.analyzer.Analyze(c.Request.Context(), ticker)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if err := h.recorder.RecordAnalysis(c.Request.Context(), report); err != nil {
		h.log.WithError(err).WithField("ticker", report.Ticker).Error("record analysis")
	}
	c.JSON(http.StatusOK, report)
}

// History returns the stored runs of a ticker.
func (h *AnalysisHandler) History(c *gin.Context) {
	ticker := c.Query("ticker")
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": analyzer.ErrNoTicker.Error()})
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}
	recs, err := h.recorder.RecentAnalyses(c.Request.Context(), strings.ToUpper(ticker), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []recorder.AnalysisRecord{}
	}
	c.JSON(http.StatusOK, recs)
}

// statusClientClosedRequest is nginx's code for a request the client abandoned.
const statusClientClosedRequest = 499

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var (
		missing      *model.MissingColumnError
		invalid      *model.InvalidDataError
		insufficient *model.InsufficientHistoryError
		index        *model.IndexError
	)
	switch {
	case errors.Is(err, analyzer.ErrNoTicker):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, analyzer.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrEmptySeries),
		errors.As(err, &missing),
		errors.As(err, &invalid),
		errors.As(err, &insufficient),
		errors.As(err, &index):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

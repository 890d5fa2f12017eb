package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/service/tickers"
	pkgkafka "StockSage/pkg/kafka"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

// AnalysisRequestsHandler consumes analysis requests from Kafka and runs
// the full pipeline in the background, without a streaming client. Results
// land in the analysis store and on the completed-events topic the same
// way interactive runs do. Errors are returned to the consumer so its
// retry and dead-letter handling applies.
type AnalysisRequestsHandler struct {
	topic string
	orch  *Orchestrator
	rec   *metrics.Recorder
	log   *applogger.Logger
}

func NewAnalysisRequestsHandler(topic string, orch *Orchestrator, rec *metrics.Recorder, log *applogger.Logger) *AnalysisRequestsHandler {
	return &AnalysisRequestsHandler{topic: topic, orch: orch, rec: rec, log: log}
}

func (h *AnalysisRequestsHandler) Topic() string { return h.topic }

func (h *AnalysisRequestsHandler) Handle(ctx context.Context, b []byte) error {
	var req models.AnalysisRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.rec.RecordError("requests_unmarshal")
		return err
	}
	if req.Ticker == "" {
		h.rec.RecordError("requests_no_ticker")
		return fmt.Errorf("analysis request without ticker")
	}

	ticker := tickers.Normalize(req.Ticker)
	model := req.Model
	if model == "" {
		model = "stock-analyst"
	}

	h.log.Info("background analysis started",
		applogger.String("ticker", ticker),
		applogger.String("request_id", req.RequestID),
	)

	start := time.Now()
	analysis, err := h.orch.Run(ctx, "", ticker, model, nil)
	if err != nil {
		h.rec.RecordError("requests_run")
		return err
	}

	h.log.Info("background analysis completed",
		applogger.String("ticker", ticker),
		applogger.String("decision", string(analysis.Decision)),
		applogger.Duration("took", time.Since(start)),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*AnalysisRequestsHandler)(nil)

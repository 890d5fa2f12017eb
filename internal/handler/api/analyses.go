package api

import (
	"strings"

	"github.com/labstack/echo/v4"

	"StockSage/internal/domain/repository"
	xhttp "StockSage/pkg/http"
	applogger "StockSage/pkg/logger"
)

// AnalysesHandler serves the stored analysis history.
type AnalysesHandler struct {
	store repository.AnalysisStore
	log   *applogger.Logger
}

func NewAnalysesHandler(store repository.AnalysisStore, log *applogger.Logger) *AnalysesHandler {
	return &AnalysesHandler{store: store, log: log}
}

func (h *AnalysesHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyses", h.List)
	g.GET("/analyses/latest", h.Latest)
	e.GET("/healthz", h.Health)
}

func (h *AnalysesHandler) List(c echo.Context) error {
	ticker := strings.ToUpper(strings.TrimSpace(c.QueryParam("ticker")))
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 20)

	rows, err := h.store.RecentAnalyses(c.Request().Context(), ticker, limit)
	if err != nil {
		h.log.Error("listing analyses failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("analysis store unavailable"))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *AnalysesHandler) Latest(c echo.Context) error {
	ticker := strings.ToUpper(strings.TrimSpace(c.QueryParam("ticker")))

	a, err := h.store.LatestAnalysis(c.Request().Context(), ticker)
	if err != nil {
		h.log.Error("fetching latest analysis failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.UnavailableError("analysis store unavailable"))
	}
	if a == nil {
		return xhttp.NotFoundResponse(c, "no analysis found")
	}
	return xhttp.SuccessResponse(c, a)
}

func (h *AnalysesHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, echo.Map{"status": "ok"})
}

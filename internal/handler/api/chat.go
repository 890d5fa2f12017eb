package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"StockSage/internal/domain/models"
	"StockSage/internal/service/ratelimit"
	"StockSage/internal/usecase"
	xhttp "StockSage/pkg/http"
	applogger "StockSage/pkg/logger"
)

const (
	modelStockAnalyst     = "stock-analyst"
	modelStockAnalystFast = "stock-analyst-fast"
	modelOwner            = "stocksage"
	modelCreated          = int64(1700000000)
)

// ChatHandler exposes the analysis pipeline behind the OpenAI chat
// completions wire format so any OpenAI-compatible client can talk to it.
type ChatHandler struct {
	chat *usecase.ChatService
	rl   *ratelimit.Limiter
	log  *applogger.Logger
}

func NewChatHandler(chat *usecase.ChatService, log *applogger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, rl: ratelimit.New(), log: log}
}

func (h *ChatHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/v1/models", h.Models)
	e.POST("/v1/chat/completions", h.Completions)
}

func (h *ChatHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "AI Stock Analyst API - OpenAI Compatible"})
}

func (h *ChatHandler) Models(c echo.Context) error {
	return c.JSON(http.StatusOK, models.ModelList{
		Object: "list",
		Data: []models.ModelInfo{
			{ID: modelStockAnalyst, Object: "model", Created: modelCreated, OwnedBy: modelOwner},
			{ID: modelStockAnalystFast, Object: "model", Created: modelCreated, OwnedBy: modelOwner},
		},
	})
}

// Completions serves POST /v1/chat/completions. Errors before the stream
// starts map to OpenAI-style JSON errors; once streaming begins, failures
// degrade into report text on the stream.
func (h *ChatHandler) Completions(c echo.Context) error {
	req := &models.ChatCompletionRequest{}
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	userMessage := req.LastUserContent()
	if userMessage == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "No user message found"})
	}

	if !h.rl.Allow(c.RealIP()+":chat", 3, 0.2) {
		h.log.Warn("chat rate limited", applogger.String("remote", c.RealIP()))
		return c.JSON(http.StatusTooManyRequests, echo.Map{"detail": "rate limited"})
	}

	sessionID := req.User
	if sessionID == "" {
		sessionID = "default"
	}

	if req.Stream {
		return h.stream(c, sessionID, userMessage, req.Model)
	}

	text, err := h.chat.Respond(c.Request().Context(), sessionID, userMessage, req.Model)
	if err != nil {
		h.log.Error("chat completion failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("analysis failed"))
	}

	return c.JSON(http.StatusOK, models.ChatCompletionResponse{
		ID:      completionID(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []models.ChatCompletionChoice{
			{
				Index:        0,
				Message:      models.Message{Role: "assistant", Content: text},
				FinishReason: "stop",
			},
		},
		Usage: models.Usage{
			PromptTokens:     len(strings.Fields(userMessage)),
			CompletionTokens: len(strings.Fields(text)),
			TotalTokens:      len(strings.Fields(userMessage)) + len(strings.Fields(text)),
		},
	})
}

func (h *ChatHandler) stream(c echo.Context, sessionID, userMessage, model string) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	for content := range h.chat.Stream(ctx, sessionID, userMessage, model) {
		if err := writeSSE(resp, contentChunk(model, content)); err != nil {
			return err
		}
	}

	if err := writeSSE(resp, finishChunk(model)); err != nil {
		return err
	}
	if _, err := fmt.Fprint(resp, "data: [DONE]\n\n"); err != nil {
		return err
	}
	resp.Flush()
	return nil
}

func contentChunk(model, content string) models.ChatCompletionChunk {
	return models.ChatCompletionChunk{
		ID:      completionID(),
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.ChunkChoice{
			{Index: 0, Delta: models.ChunkDelta{Content: content}},
		},
	}
}

func finishChunk(model string) models.ChatCompletionChunk {
	stop := "stop"
	return models.ChatCompletionChunk{
		ID:      completionID(),
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []models.ChunkChoice{
			{Index: 0, Delta: models.ChunkDelta{}, FinishReason: &stop},
		},
	}
}

func writeSSE(resp *echo.Response, chunk models.ChatCompletionChunk) error {
	b, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "data: %s\n\n", b); err != nil {
		return err
	}
	resp.Flush()
	return nil
}

func completionID() string {
	return "chatcmpl-" + time.Now().Format("20060102150405")
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"StockSage/internal/agents"
	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	"StockSage/internal/service/tickers"
	applogger "StockSage/pkg/logger"
)

// NoTickerMessage is returned when a message names no ticker and no prior
// analysis exists to answer against.
const NoTickerMessage = "ไม่พบ ticker ในข้อความ กรุณาระบุหุ้นที่ต้องการวิเคราะห์ เช่น 'วิเคราะห์ AAPL'"

const (
	reportChunkRunes   = 500
	followupChunkRunes = 200
	reportChunkDelay   = 50 * time.Millisecond
	followupChunkDelay = 30 * time.Millisecond
)

// ChatService turns a chat message into either a fresh analysis or a
// follow-up answer over the cached session context.
type ChatService struct {
	orch     *Orchestrator
	sessions repository.SessionStore
	store    repository.AnalysisStore
	team     *agents.Team
	log      *applogger.Logger
}

func NewChatService(orch *Orchestrator, sessions repository.SessionStore, store repository.AnalysisStore, team *agents.Team, log *applogger.Logger) *ChatService {
	return &ChatService{orch: orch, sessions: sessions, store: store, team: team, log: log}
}

// Respond handles the non-streaming path: run the analysis (or the
// follow-up answer) to completion and return the full text.
func (s *ChatService) Respond(ctx context.Context, sessionID, message, model string) (string, error) {
	ticker := tickers.Extract(message)
	s.saveMessage(ctx, sessionID, "user", message, ticker)

	if ticker == "" {
		sc := s.sessionContext(ctx, sessionID)
		if sc == nil {
			return NoTickerMessage, nil
		}
		answer := s.team.Assistant.Answer(ctx, sc, message)
		s.saveMessage(ctx, sessionID, "assistant", answer, sc.Ticker)
		return answer, nil
	}

	analysis, err := s.orch.Run(ctx, sessionID, ticker, model, nil)
	if err != nil {
		return "", err
	}
	s.saveMessage(ctx, sessionID, "assistant", analysis.Report, analysis.Ticker)
	return analysis.Report, nil
}

// Stream handles the streaming path. The returned channel carries content
// deltas: progress updates while the pipeline advances, then the report in
// small chunks. It closes when the response is complete.
func (s *ChatService) Stream(ctx context.Context, sessionID, message, model string) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)

		ticker := tickers.Extract(message)
		s.saveMessage(ctx, sessionID, "user", message, ticker)

		if ticker == "" {
			sc := s.sessionContext(ctx, sessionID)
			if sc == nil {
				s.send(ctx, out, NoTickerMessage)
				return
			}
			s.streamFollowup(ctx, out, sessionID, sc, message)
			return
		}

		progress := make(chan models.Progress, 16)
		result := make(chan *models.Analysis, 1)
		go func() {
			analysis, err := s.orch.Run(ctx, sessionID, ticker, model, progress)
			close(progress)
			if err != nil {
				s.log.Warn("analysis aborted",
					applogger.String("ticker", ticker),
					applogger.Error(err),
				)
			}
			result <- analysis
		}()

		for p := range progress {
			s.send(ctx, out, p.Message)
		}

		analysis := <-result
		if analysis == nil {
			s.send(ctx, out, "\n\n❌ เกิดข้อผิดพลาด: การวิเคราะห์ไม่สำเร็จ")
			return
		}

		s.streamChunks(ctx, out, analysis.Report, reportChunkRunes, reportChunkDelay)
		s.saveMessage(ctx, sessionID, "assistant", analysis.Report, analysis.Ticker)
	}()
	return out
}

func (s *ChatService) streamFollowup(ctx context.Context, out chan<- string, sessionID string, sc *models.SessionContext, question string) {
	s.send(ctx, out, fmt.Sprintf("💬 **กำลังตอบคำถามเกี่ยวกับ %s...**\n\n", sc.Ticker))
	answer := s.team.Assistant.Answer(ctx, sc, question)
	s.streamChunks(ctx, out, answer, followupChunkRunes, followupChunkDelay)
	s.saveMessage(ctx, sessionID, "assistant", answer, sc.Ticker)
}

func (s *ChatService) sessionContext(ctx context.Context, sessionID string) *models.SessionContext {
	if sessionID == "" {
		return nil
	}
	sc, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.log.Warn("session lookup failed",
			applogger.String("session", sessionID),
			applogger.Error(err),
		)
		return nil
	}
	if sc == nil || sc.Report == "" {
		return nil
	}
	return sc
}

// streamChunks emits text in rune-bounded chunks with a small delay so
// clients render the report progressively.
func (s *ChatService) streamChunks(ctx context.Context, out chan<- string, text string, size int, delay time.Duration) {
	runes := []rune(text)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		if !s.send(ctx, out, string(runes[i:end])) {
			return
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}
}

func (s *ChatService) send(ctx context.Context, out chan<- string, content string) bool {
	select {
	case out <- content:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *ChatService) saveMessage(ctx context.Context, sessionID, role, content, ticker string) {
	if sessionID == "" || content == "" {
		return
	}
	err := s.store.SaveChatMessage(ctx, &models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Ticker:    ticker,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("saving chat message failed",
			applogger.String("session", sessionID),
			applogger.Error(err),
		)
	}
}

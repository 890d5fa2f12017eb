package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"StockSage/internal/domain/models"
)

func newChatFixture(t *testing.T) (*ChatService, *orchFixture) {
	t.Helper()
	fx := newOrchFixture(t)
	svc := NewChatService(fx.orch, fx.sessions, fx.store, fx.team, fx.orch.log)
	return svc, fx
}

func TestRespondNoTicker(t *testing.T) {
	svc, _ := newChatFixture(t)

	reply, err := svc.Respond(context.Background(), "sess-1", "สวัสดีครับ", "stock-analyst")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply != NoTickerMessage {
		t.Errorf("reply = %q, want no-ticker message", reply)
	}
}

func TestRespondRunsAnalysis(t *testing.T) {
	svc, fx := newChatFixture(t)

	reply, err := svc.Respond(context.Background(), "sess-1", "วิเคราะห์ AAPL", "stock-analyst")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(reply, "รายงานการวิเคราะห์หุ้น AAPL") {
		t.Errorf("reply is not a report: %.80s", reply)
	}

	// A user message and the assistant report must both be persisted.
	roles := map[string]int{}
	for _, m := range fx.store.messages {
		roles[m.Role]++
	}
	if roles["user"] != 1 || roles["assistant"] != 1 {
		t.Errorf("persisted roles = %v", roles)
	}
}

func TestRespondFollowup(t *testing.T) {
	svc, fx := newChatFixture(t)

	fx.sessions.Put(context.Background(), "sess-1", &models.SessionContext{
		Ticker:   "AAPL",
		Decision: models.DecisionBuy,
		Report:   "รายงานก่อนหน้า",
	})

	reply, err := svc.Respond(context.Background(), "sess-1", "ทำไมถึงแนะนำซื้อ", "stock-analyst")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if reply == NoTickerMessage {
		t.Fatal("follow-up fell back to the no-ticker message")
	}
	if reply != bullishResponse {
		t.Errorf("reply = %q, want assistant answer", reply)
	}
}

func TestStreamAnalysis(t *testing.T) {
	svc, fx := newChatFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var chunks []string
	for chunk := range svc.Stream(ctx, "sess-1", "วิเคราะห์ AAPL หน่อย", "stock-analyst") {
		chunks = append(chunks, chunk)
	}
	body := strings.Join(chunks, "")

	progressIdx := strings.Index(body, "เริ่มวิเคราะห์หุ้น **AAPL**")
	reportIdx := strings.Index(body, "# 📊 รายงานการวิเคราะห์หุ้น AAPL")
	if progressIdx < 0 || reportIdx < 0 {
		t.Fatalf("stream missing progress or report: %.120s", body)
	}
	if progressIdx > reportIdx {
		t.Error("progress should arrive before the report")
	}
	if len(fx.store.analyses) != 1 {
		t.Errorf("stored analyses = %d", len(fx.store.analyses))
	}
}

func TestStreamNoTicker(t *testing.T) {
	svc, _ := newChatFixture(t)

	var chunks []string
	for chunk := range svc.Stream(context.Background(), "sess-9", "ขอคำแนะนำหน่อย", "stock-analyst") {
		chunks = append(chunks, chunk)
	}
	if len(chunks) != 1 || chunks[0] != NoTickerMessage {
		t.Fatalf("chunks = %v", chunks)
	}
}

func TestStreamFollowupPrefix(t *testing.T) {
	svc, fx := newChatFixture(t)

	fx.sessions.Put(context.Background(), "sess-1", &models.SessionContext{
		Ticker:   "NVDA",
		Decision: models.DecisionBuy,
		Report:   "รายงานก่อนหน้า",
	})

	var chunks []string
	for chunk := range svc.Stream(context.Background(), "sess-1", "ความเสี่ยงคืออะไร", "stock-analyst") {
		chunks = append(chunks, chunk)
	}
	if len(chunks) == 0 || !strings.Contains(chunks[0], "กำลังตอบคำถามเกี่ยวกับ NVDA") {
		t.Fatalf("chunks = %v", chunks)
	}
}

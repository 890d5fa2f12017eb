package models

import "time"

// Signal is a directional trading signal.
type Signal string

const (
	SignalBullish Signal = "BULLISH"
	SignalBearish Signal = "BEARISH"
	SignalNeutral Signal = "NEUTRAL"
)

// Decision is a final trade decision.
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
	DecisionHold Decision = "HOLD"
)

// Flow distinguishes the analysis pipeline used.
type Flow string

const (
	FlowStock  Flow = "stock"
	FlowCrypto Flow = "crypto"
)

// AgentReport is the output of one analyst or researcher agent.
type AgentReport struct {
	Agent      string  `json:"agent"`
	Signal     Signal  `json:"signal"`
	Confidence float64 `json:"confidence"`
	Argument   string  `json:"argument"`
	Section    string  `json:"section"`
}

// DebateOutcome is the moderator's judgment of the bull/bear debate.
type DebateOutcome struct {
	Verdict        Signal  `json:"verdict"`
	BullConfidence float64 `json:"bull_confidence"`
	BearConfidence float64 `json:"bear_confidence"`
	Confidence     float64 `json:"confidence"`
	Section        string  `json:"section"`
}

// RiskJudgment is the risk judge's resolution of the risk debate.
type RiskJudgment struct {
	Decision    Decision `json:"decision"`
	WinningSide string   `json:"winning_side"`
	Verdict     string   `json:"verdict"`
	Section     string   `json:"section"`
}

// Scores holds the quantitative component scores alongside the combined value.
type Scores struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
	Combined    float64 `json:"combined"`
	Signal      Signal  `json:"signal"`
}

// AnalysisState accumulates everything produced while analyzing one ticker.
// Agents read the fields filled by earlier phases and append their own.
type AnalysisState struct {
	Ticker  string
	Company string
	Flow    Flow

	Quote      *Quote
	Profile    *CompanyProfile
	Candles    []Candle
	Financials *Financials
	Statements *Statements
	Indicators *IndicatorReadings
	Crypto     *CryptoSnapshot

	Recommendation *Recommendation
	Earnings       *EarningsSurprise
	Insider        *InsiderSentiment

	News   []NewsItem
	Search []SearchResult

	Market       *AgentReport
	Fundamentals *AgentReport
	NewsReport   *AgentReport
	Social       *AgentReport
	Risk         *AgentReport

	Bull   *AgentReport
	Bear   *AgentReport
	Debate *DebateOutcome

	Risky        *AgentReport
	Conservative *AgentReport
	NeutralRisk  *AgentReport
	Judgment     *RiskJudgment

	Scores   *Scores
	Decision Decision
	Plan     string
}

// Analysis is the persisted record of a completed run.
type Analysis struct {
	ID         string    `json:"id"`
	Ticker     string    `json:"ticker"`
	Company    string    `json:"company"`
	Flow       Flow      `json:"flow"`
	Decision   Decision  `json:"decision"`
	Signal     Signal    `json:"signal"`
	Confidence float64   `json:"confidence"`
	Scores     Scores    `json:"scores"`
	Report     string    `json:"report"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChatMessage is one persisted conversation turn.
type ChatMessage struct {
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Ticker    string    `json:"ticker"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionContext is the cached state used to answer follow-up questions.
type SessionContext struct {
	Ticker    string    `json:"ticker"`
	Company   string    `json:"company"`
	Flow      Flow      `json:"flow"`
	Decision  Decision  `json:"decision"`
	Report    string    `json:"report"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalysisEvent is published after every completed analysis.
type AnalysisEvent struct {
	ID         string    `json:"id"`
	Ticker     string    `json:"ticker"`
	Flow       Flow      `json:"flow"`
	Decision   Decision  `json:"decision"`
	Signal     Signal    `json:"signal"`
	Confidence float64   `json:"confidence"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
}

// AnalysisRequest is consumed from the requests topic for background runs.
type AnalysisRequest struct {
	Ticker    string `json:"ticker"`
	Model     string `json:"model"`
	RequestID string `json:"request_id,omitempty"`
}

// Progress is a streaming status update emitted while a run advances.
type Progress struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

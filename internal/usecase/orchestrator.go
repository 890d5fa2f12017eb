package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"StockSage/internal/agents"
	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	"StockSage/internal/scoring"
	"StockSage/internal/service/tickers"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

// Orchestrator runs the multi-agent analysis pipeline: parallel data
// collection and analysts, the bull/bear debate, the risk debate, and the
// final portfolio decision. Every downstream write (store, session cache,
// event bus) is best-effort; a failed write is logged and never aborts a
// run.
type Orchestrator struct {
	team *agents.Team

	market       repository.MarketData
	fundamentals repository.FundamentalsData
	sentiment    repository.SentimentData
	crypto       repository.CryptoData
	search       repository.Searcher

	store     repository.AnalysisStore
	sessions  repository.SessionStore
	publisher repository.Publisher

	rec *metrics.Recorder
	log *applogger.Logger
}

// OrchestratorDeps carries the pipeline's collaborators.
type OrchestratorDeps struct {
	Team         *agents.Team
	Market       repository.MarketData
	Fundamentals repository.FundamentalsData
	Sentiment    repository.SentimentData
	Crypto       repository.CryptoData
	Search       repository.Searcher
	Store        repository.AnalysisStore
	Sessions     repository.SessionStore
	Publisher    repository.Publisher
	Recorder     *metrics.Recorder
	Logger       *applogger.Logger
}

func NewOrchestrator(d OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		team:         d.Team,
		market:       d.Market,
		fundamentals: d.Fundamentals,
		sentiment:    d.Sentiment,
		crypto:       d.Crypto,
		search:       d.Search,
		store:        d.Store,
		sessions:     d.Sessions,
		publisher:    d.Publisher,
		rec:          d.Recorder,
		log:          d.Logger,
	}
}

// emit sends a progress update without ever blocking past cancellation.
func (o *Orchestrator) emit(ctx context.Context, progress chan<- models.Progress, stage, message string) {
	if progress == nil {
		return
	}
	select {
	case progress <- models.Progress{Stage: stage, Message: message}:
	case <-ctx.Done():
	}
}

// Run analyzes one ticker end to end and returns the persisted analysis.
// Progress updates stream on the channel when one is given; pass nil for
// background runs. Agent and provider failures degrade into report text,
// so Run only errors on cancellation.
func (o *Orchestrator) Run(ctx context.Context, sessionID, ticker, model string, progress chan<- models.Progress) (*models.Analysis, error) {
	ticker = tickers.Normalize(ticker)

	st := &models.AnalysisState{Ticker: ticker, Flow: models.FlowStock}
	if tickers.IsCrypto(ticker) {
		st.Flow = models.FlowCrypto
		return o.runCrypto(ctx, sessionID, st, model, progress)
	}
	return o.runStock(ctx, sessionID, st, model, progress)
}

func (o *Orchestrator) runStock(ctx context.Context, sessionID string, st *models.AnalysisState, model string, progress chan<- models.Progress) (*models.Analysis, error) {
	o.emit(ctx, progress, "start", fmt.Sprintf("🔍 เริ่มวิเคราะห์หุ้น **%s**...\n\n", st.Ticker))

	// Phase 1: data collection and the five analysts, all in parallel.
	o.emit(ctx, progress, "phase1", "📊 **Phase 1:** กำลังรวบรวมข้อมูล...\n")
	phaseStart := time.Now()

	socialHits := o.collectStockData(ctx, st)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(5)
	go func() { defer wg.Done(); st.Market = o.team.Market.Analyze(ctx, st) }()
	go func() { defer wg.Done(); st.Fundamentals = o.team.Fundamentals.Analyze(ctx, st) }()
	go func() { defer wg.Done(); st.NewsReport = o.team.News.Analyze(ctx, st) }()
	go func() { defer wg.Done(); st.Social = o.team.Social.Analyze(ctx, st, socialHits) }()
	go func() { defer wg.Done(); st.Risk = o.team.Risk.Analyze(ctx, st) }()
	wg.Wait()

	o.rec.RecordPhase("analysts", time.Since(phaseStart).Seconds())
	o.emit(ctx, progress, "phase1", "✅ รวบรวมข้อมูลเสร็จสิ้น\n\n")

	combined := scoring.Score(st.Candles, st.Financials, section(st.NewsReport))
	scores := combined.Scores()
	st.Scores = &scores

	// Phase 2: bull and bear researchers.
	o.emit(ctx, progress, "phase2", "🐂🐻 **Phase 2:** Bull vs Bear Debate...\n")
	phaseStart = time.Now()

	wg.Add(2)
	go func() { defer wg.Done(); st.Bull = o.team.Bull.Analyze(ctx, st) }()
	go func() { defer wg.Done(); st.Bear = o.team.Bear.Analyze(ctx, st) }()
	wg.Wait()

	o.rec.RecordPhase("debate", time.Since(phaseStart).Seconds())
	o.emit(ctx, progress, "phase2", "✅ Bull vs Bear เสร็จสิ้น\n\n")

	// Phase 3: moderation.
	o.emit(ctx, progress, "phase3", "⚖️ **Phase 3:** Moderating debate...\n")
	phaseStart = time.Now()
	st.Debate = o.team.Moderator.Moderate(ctx, st)
	o.rec.RecordPhase("moderation", time.Since(phaseStart).Seconds())
	o.emit(ctx, progress, "phase3", "✅ Moderation เสร็จสิ้น\n\n")

	// Phase 4: sequential risk debate, each side seeing the prior
	// arguments, resolved by the judge.
	o.emit(ctx, progress, "phase4", "⚠️ **Phase 4:** Risk Analysis...\n")
	phaseStart = time.Now()
	st.Risky = o.team.Risky.Debate(ctx, st)
	st.Conservative = o.team.Conservative.Debate(ctx, st)
	st.NeutralRisk = o.team.NeutralRisk.Debate(ctx, st)
	st.Judgment = o.team.Judge.Judge(ctx, st)
	o.rec.RecordPhase("risk_debate", time.Since(phaseStart).Seconds())
	o.emit(ctx, progress, "phase4", "✅ Risk Analysis เสร็จสิ้น\n\n")

	// Phase 5: final decision.
	o.emit(ctx, progress, "phase5", "💼 **Phase 5:** Final Decision...\n")
	phaseStart = time.Now()
	decision, plan := o.team.Portfolio.Decide(ctx, st)
	st.Decision = decision
	st.Plan = plan
	o.rec.RecordPhase("decision", time.Since(phaseStart).Seconds())

	o.emit(ctx, progress, "phase5", fmt.Sprintf("✅ **คำตัดสินสุดท้าย: %s**\n\n", decision))
	o.emit(ctx, progress, "phase5", "---\n\n")

	report := BuildStockReport(st, combined.FormatReport(), time.Now())

	confidence := scores.Combined / 100
	if st.Debate != nil && st.Debate.Confidence > 0 {
		confidence = st.Debate.Confidence
	}

	analysis := &models.Analysis{
		ID:         uuid.NewString(),
		Ticker:     st.Ticker,
		Company:    st.Company,
		Flow:       models.FlowStock,
		Decision:   decision,
		Signal:     scores.Signal,
		Confidence: confidence,
		Scores:     scores,
		Report:     report,
		Model:      model,
		CreatedAt:  time.Now().UTC(),
	}
	o.finish(ctx, sessionID, st, analysis)
	return analysis, ctx.Err()
}

func (o *Orchestrator) runCrypto(ctx context.Context, sessionID string, st *models.AnalysisState, model string, progress chan<- models.Progress) (*models.Analysis, error) {
	o.emit(ctx, progress, "start", fmt.Sprintf("💰 เริ่มวิเคราะห์ Crypto **%s**...\n\n", st.Ticker))

	o.emit(ctx, progress, "phase1", "📊 **Phase 1:** กำลังรวบรวมข้อมูล Crypto...\n")
	phaseStart := time.Now()
	socialHits := o.collectCryptoData(ctx, st)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st.Market = o.team.Crypto.Analyze(ctx, st)
	o.rec.RecordPhase("crypto", time.Since(phaseStart).Seconds())
	o.emit(ctx, progress, "phase1", "✅ รวบรวมข้อมูลเสร็จสิ้น\n\n")

	o.emit(ctx, progress, "phase2", "📰 **Phase 2:** วิเคราะห์ข่าวสาร...\n")
	phaseStart = time.Now()
	st.NewsReport = o.team.News.Analyze(ctx, st)
	o.rec.RecordPhase("crypto_news", time.Since(phaseStart).Seconds())
	o.emit(ctx, progress, "phase2", "✅ วิเคราะห์ข่าวเสร็จสิ้น\n\n")

	o.emit(ctx, progress, "phase3", "💬 **Phase 3:** วิเคราะห์ Social Sentiment...\n")
	phaseStart = time.Now()
	st.Social = o.team.Social.Analyze(ctx, st, socialHits)
	o.rec.RecordPhase("crypto_social", time.Since(phaseStart).Seconds())
	o.emit(ctx, progress, "phase3", "✅ Social Sentiment เสร็จสิ้น\n\n")

	signal := models.SignalNeutral
	if st.Market != nil {
		signal = st.Market.Signal
	}
	st.Decision = decisionFromSignal(signal)

	o.emit(ctx, progress, "done", fmt.Sprintf("✅ **สัญญาณ: %s**\n\n", signal))
	o.emit(ctx, progress, "done", "---\n\n")

	report := BuildCryptoReport(st, time.Now())

	confidence := 0.5
	if st.Market != nil {
		confidence = st.Market.Confidence
	}

	analysis := &models.Analysis{
		ID:         uuid.NewString(),
		Ticker:     st.Ticker,
		Company:    st.Company,
		Flow:       models.FlowCrypto,
		Decision:   st.Decision,
		Signal:     signal,
		Confidence: confidence,
		Report:     report,
		Model:      model,
		CreatedAt:  time.Now().UTC(),
	}
	o.finish(ctx, sessionID, st, analysis)
	return analysis, ctx.Err()
}

// collectStockData fetches market, fundamental, sentiment, news, and web
// search data concurrently. Provider errors are logged and leave the
// corresponding fields empty; the analysts render what is available.
func (o *Orchestrator) collectStockData(ctx context.Context, st *models.AnalysisState) []models.SearchResult {
	var socialHits []models.SearchResult

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				o.rec.RecordError("collect_" + name)
				o.log.Warn("data collection failed",
					applogger.String("source", name),
					applogger.String("ticker", st.Ticker),
					applogger.Error(err),
				)
			}
		}()
	}

	run("quote", func() (err error) {
		st.Quote, err = o.market.Quote(ctx, st.Ticker)
		return err
	})
	run("profile", func() error {
		p, err := o.market.Profile(ctx, st.Ticker)
		if err != nil {
			return err
		}
		st.Profile = p
		st.Company = p.Name
		return nil
	})
	run("candles", func() (err error) {
		st.Candles, err = o.market.Candles(ctx, st.Ticker, 180)
		return err
	})
	run("financials", func() (err error) {
		st.Financials, err = o.fundamentals.Financials(ctx, st.Ticker)
		return err
	})
	run("statements", func() (err error) {
		st.Statements, err = o.fundamentals.Statements(ctx, st.Ticker)
		return err
	})
	run("indicators", func() (err error) {
		st.Indicators, err = o.fundamentals.Indicators(ctx, st.Ticker)
		return err
	})
	run("news", func() (err error) {
		st.News, err = o.market.News(ctx, st.Ticker, 10)
		return err
	})
	run("recommendation", func() (err error) {
		st.Recommendation, err = o.sentiment.Recommendation(ctx, st.Ticker)
		return err
	})
	run("earnings", func() (err error) {
		st.Earnings, err = o.sentiment.Earnings(ctx, st.Ticker)
		return err
	})
	run("insider", func() (err error) {
		st.Insider, err = o.sentiment.InsiderSentiment(ctx, st.Ticker)
		return err
	})
	run("search_news", func() (err error) {
		st.Search, err = o.search.Search(ctx, st.Ticker+" stock news", "news", 5)
		return err
	})
	run("search_social", func() (err error) {
		socialHits, err = o.search.Search(ctx, st.Ticker+" stock reddit twitter investor sentiment", "general", 5)
		return err
	})

	wg.Wait()
	return socialHits
}

func (o *Orchestrator) collectCryptoData(ctx context.Context, st *models.AnalysisState) []models.SearchResult {
	var socialHits []models.SearchResult
	base := tickers.Base(st.Ticker)

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				o.rec.RecordError("collect_" + name)
				o.log.Warn("data collection failed",
					applogger.String("source", name),
					applogger.String("ticker", st.Ticker),
					applogger.Error(err),
				)
			}
		}()
	}

	run("snapshot", func() error {
		snap, err := o.crypto.Snapshot(ctx, st.Ticker)
		if err != nil {
			return err
		}
		st.Crypto = snap
		st.Company = snap.Name
		return nil
	})
	run("candles", func() (err error) {
		st.Candles, err = o.crypto.Candles(ctx, st.Ticker, 90)
		return err
	})
	run("search_news", func() (err error) {
		st.Search, err = o.search.Search(ctx, base+" cryptocurrency news", "news", 5)
		return err
	})
	run("search_social", func() (err error) {
		socialHits, err = o.search.Search(ctx, base+" crypto reddit twitter sentiment", "general", 5)
		return err
	})

	wg.Wait()
	return socialHits
}

// finish persists the analysis, refreshes the session context, publishes
// the completion event, and records metrics. Each step is independent and
// fail-soft.
func (o *Orchestrator) finish(ctx context.Context, sessionID string, st *models.AnalysisState, a *models.Analysis) {
	if err := o.store.SaveAnalysis(ctx, a); err != nil {
		o.rec.RecordError("store_analysis")
		o.log.Error("saving analysis failed",
			applogger.String("ticker", a.Ticker),
			applogger.Error(err),
		)
	}

	if sessionID != "" {
		sc := &models.SessionContext{
			Ticker:   a.Ticker,
			Company:  a.Company,
			Flow:     a.Flow,
			Decision: a.Decision,
			Report:   a.Report,
		}
		if err := o.sessions.Put(ctx, sessionID, sc); err != nil {
			o.rec.RecordError("session_put")
			o.log.Warn("saving session context failed",
				applogger.String("session", sessionID),
				applogger.Error(err),
			)
		}
	}

	ev := &models.AnalysisEvent{
		ID:         a.ID,
		Ticker:     a.Ticker,
		Flow:       a.Flow,
		Decision:   a.Decision,
		Signal:     a.Signal,
		Confidence: a.Confidence,
		Model:      a.Model,
		CreatedAt:  a.CreatedAt,
	}
	if err := o.publisher.PublishAnalysisCompleted(ctx, ev); err != nil {
		o.rec.RecordError("publish_event")
		o.log.Warn("publishing analysis event failed",
			applogger.String("ticker", a.Ticker),
			applogger.Error(err),
		)
	}

	o.rec.RecordAnalysis(string(a.Flow), string(a.Decision))
	o.log.Info("analysis completed",
		applogger.String("ticker", a.Ticker),
		applogger.String("flow", string(a.Flow)),
		applogger.String("decision", string(a.Decision)),
		applogger.Float64("confidence", a.Confidence),
	)
}

func decisionFromSignal(s models.Signal) models.Decision {
	switch s {
	case models.SignalBullish:
		return models.DecisionBuy
	case models.SignalBearish:
		return models.DecisionSell
	default:
		return models.DecisionHold
	}
}

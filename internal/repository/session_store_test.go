package repository

import (
	"context"
	"testing"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/pkg/cache"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewRedisSessionStore(mc, time.Hour)
	ctx := context.Background()

	err := store.Put(ctx, "sess-1", &models.SessionContext{
		Ticker:   "AAPL",
		Company:  "Apple Inc",
		Flow:     models.FlowStock,
		Decision: models.DecisionBuy,
		Report:   "รายงาน",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	sc, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sc == nil || sc.Ticker != "AAPL" || sc.Decision != models.DecisionBuy {
		t.Errorf("sc = %+v", sc)
	}
	if sc.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set on Put")
	}
}

func TestSessionStoreMissIsNil(t *testing.T) {
	mc := cache.NewMemoryCache()
	defer mc.Close()
	store := NewRedisSessionStore(mc, time.Hour)

	sc, err := store.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sc != nil {
		t.Errorf("sc = %+v, want nil on miss", sc)
	}
}

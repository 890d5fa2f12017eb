package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := mc.Set(ctx, "quote:AAPL", payload{Symbol: "AAPL", Price: 185.5}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got payload
	if err := mc.Get(ctx, "quote:AAPL", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Symbol != "AAPL" || got.Price != 185.5 {
		t.Errorf("got = %+v", got)
	}
}

func TestMemoryGetMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var s string
	if err := mc.Get(context.Background(), "missing", &s); err != ErrCacheMiss {
		t.Fatalf("err = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryExpiration(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var s string
	if err := mc.Get(ctx, "k", &s); err != ErrCacheMiss {
		t.Fatalf("err = %v, want ErrCacheMiss after expiry", err)
	}
}

func TestMemoryLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	mc.Set(ctx, "a", "1", time.Minute)
	time.Sleep(time.Millisecond)
	mc.Set(ctx, "b", "2", time.Minute)
	time.Sleep(time.Millisecond)
	mc.Set(ctx, "c", "3", time.Minute)

	var s string
	if err := mc.Get(ctx, "a", &s); err != ErrCacheMiss {
		t.Errorf("oldest key should be evicted, err = %v", err)
	}
	if err := mc.Get(ctx, "c", &s); err != nil {
		t.Errorf("newest key missing: %v", err)
	}
}

func TestMemoryTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	ok, err := mc.TryLock(ctx, "lock:x", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: ok=%v err=%v", ok, err)
	}
	ok, err = mc.TryLock(ctx, "lock:x", time.Minute)
	if err != nil || ok {
		t.Fatalf("second lock should fail: ok=%v err=%v", ok, err)
	}
	if err := mc.Unlock(ctx, "lock:x"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	ok, _ = mc.TryLock(ctx, "lock:x", time.Minute)
	if !ok {
		t.Fatal("lock should be free after unlock")
	}
}

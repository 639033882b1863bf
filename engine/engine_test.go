package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/personakit/cache"
	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/filter"
	"github.com/rushteam/personakit/store"
)

type fakeInteractions struct {
	events []core.InteractionEvent
	err    error
	calls  int
}

func (f *fakeInteractions) FetchInteractions(ctx context.Context, windowDays int) ([]core.InteractionEvent, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

type fakeCatalog struct {
	descriptors []core.ItemDescriptor
	err         error
}

func (f *fakeCatalog) FetchItemDescriptors(ctx context.Context) ([]core.ItemDescriptor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.descriptors, nil
}

// U 和 V 在 {itemA, itemB} 上完全正相关，V 还碰过 itemC。
func cfEvents() []core.InteractionEvent {
	return []core.InteractionEvent{
		{UserID: "U", ItemID: "itemA", Weight: 5},
		{UserID: "U", ItemID: "itemB", Weight: 2},
		{UserID: "V", ItemID: "itemA", Weight: 4},
		{UserID: "V", ItemID: "itemB", Weight: 1},
		{UserID: "V", ItemID: "itemC", Weight: 3},
	}
}

func newTestEngine(src *fakeInteractions) *Engine {
	return New(src, &fakeCatalog{}, Config{}, zerolog.Nop())
}

func TestGetRecommendations_InvalidInput(t *testing.T) {
	e := newTestEngine(&fakeInteractions{events: cfEvents()})

	tests := []struct {
		name   string
		userID string
		opts   core.Options
	}{
		{"empty user", "", core.Options{}},
		{"negative topN", "U", core.Options{TopN: -1}},
		{"unknown algorithm", "U", core.Options{Algorithm: "pagerank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.GetRecommendations(context.Background(), tt.userID, tt.opts)
			if !core.IsInvalidInput(err) {
				t.Errorf("error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestGetRecommendations_MissingSource(t *testing.T) {
	e := New(nil, nil, Config{}, zerolog.Nop())
	_, err := e.GetRecommendations(context.Background(), "U", core.Options{})
	if !core.IsInvalidInput(err) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

// 数据源故障降级：空列表 + nil error，绝不把存储错误抛给调用方。
func TestGetRecommendations_SourceFailureDegrades(t *testing.T) {
	e := newTestEngine(&fakeInteractions{err: errors.New("warehouse offline")})

	got, err := e.GetRecommendations(context.Background(), "U", core.Options{})
	if err != nil {
		t.Fatalf("expected degraded empty result, got error %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestGetRecommendations_UserBased(t *testing.T) {
	e := newTestEngine(&fakeInteractions{events: cfEvents()})

	got, err := e.GetRecommendations(context.Background(), "U",
		core.Options{Algorithm: core.AlgorithmUserBased})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "itemC" {
		t.Fatalf("got %v, want single itemC", got)
	}
	if got[0].ID == "itemA" || got[0].ID == "itemB" {
		t.Error("interacted item surfaced")
	}
}

func TestGetRecommendations_HybridDefault(t *testing.T) {
	e := newTestEngine(&fakeInteractions{events: cfEvents()})

	got, err := e.GetRecommendations(context.Background(), "U", core.Options{})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("hybrid produced no results")
	}
	if got[0].Strategy != core.AlgorithmHybrid {
		t.Errorf("strategy = %q, want hybrid", got[0].Strategy)
	}
	for _, it := range got {
		if it.ID == "itemA" || it.ID == "itemB" {
			t.Errorf("interacted item %s surfaced", it.ID)
		}
	}
}

// 快照在 TTL 内复用：连续请求只拉一次数据。
func TestSnapshotReuse(t *testing.T) {
	src := &fakeInteractions{events: cfEvents()}
	e := newTestEngine(src)

	for i := 0; i < 3; i++ {
		if _, err := e.GetRecommendations(context.Background(), "U", core.Options{}); err != nil {
			t.Fatalf("request %d error = %v", i, err)
		}
	}
	if src.calls != 1 {
		t.Errorf("source fetched %d times within TTL, want 1", src.calls)
	}

	if err := e.RefreshSnapshot(context.Background()); err != nil {
		t.Fatalf("RefreshSnapshot() error = %v", err)
	}
	if src.calls != 2 {
		t.Errorf("source fetched %d times after refresh, want 2", src.calls)
	}
}

func TestSnapshotExpiry(t *testing.T) {
	src := &fakeInteractions{events: cfEvents()}
	e := newTestEngine(src)
	e.Config.SnapshotTTL = time.Nanosecond

	_, _ = e.GetRecommendations(context.Background(), "U", core.Options{})
	time.Sleep(time.Millisecond)
	_, _ = e.GetRecommendations(context.Background(), "U", core.Options{})
	if src.calls != 2 {
		t.Errorf("expired snapshot not rebuilt: %d fetches", src.calls)
	}
}

// 读穿透缓存：命中后即使数据源挂掉也能出结果。
func TestGetRecommendations_CacheReadThrough(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	src := &fakeInteractions{events: cfEvents()}
	e := newTestEngine(src)
	e.Cache = cache.New(ms, time.Hour, zerolog.Nop())

	opts := core.Options{Algorithm: core.AlgorithmUserBased, UseCache: true}
	first, err := e.GetRecommendations(context.Background(), "U", opts)
	if err != nil {
		t.Fatalf("first request error = %v", err)
	}
	if len(first) == 0 {
		t.Fatal("first request returned nothing to cache")
	}

	// 数据源下线 + 快照强制过期，第二次请求只能靠缓存
	src.err = errors.New("warehouse offline")
	e.Config.SnapshotTTL = time.Nanosecond
	e.snap.store(nil)

	second, err := e.GetRecommendations(context.Background(), "U", opts)
	if err != nil {
		t.Fatalf("second request error = %v", err)
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Errorf("cache served %v, want %v", second, first)
	}
}

// 空结果不回写缓存。
func TestGetRecommendations_EmptyNotCached(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	e := newTestEngine(&fakeInteractions{events: cfEvents()})
	e.Cache = cache.New(ms, time.Hour, zerolog.Nop())

	opts := core.Options{Algorithm: core.AlgorithmUserBased, UseCache: true}
	got, err := e.GetRecommendations(context.Background(), "stranger", opts)
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result for unknown user, got %d", len(got))
	}
	if _, ok := e.Cache.Retrieve(context.Background(), "stranger", "", core.AlgorithmUserBased); ok {
		t.Error("empty result was cached")
	}
}

func TestGetRecommendations_FiltersApplied(t *testing.T) {
	e := newTestEngine(&fakeInteractions{events: cfEvents()})
	e.Filters = []filter.Filter{filter.NewBlacklistFilter([]string{"itemC"}, nil, "")}

	got, err := e.GetRecommendations(context.Background(), "U",
		core.Options{Algorithm: core.AlgorithmUserBased})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	for _, it := range got {
		if it.ID == "itemC" {
			t.Error("blacklisted item surfaced")
		}
	}
}

// TopN 为 0 使用默认值并截断。
func TestGetRecommendations_DefaultTopN(t *testing.T) {
	events := cfEvents()
	// 给 V 挂一串额外物品，让候选超过默认 TopN
	for _, id := range []string{"d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o"} {
		events = append(events, core.InteractionEvent{UserID: "V", ItemID: id, Weight: 1})
	}
	e := newTestEngine(&fakeInteractions{events: events})
	e.Config.DefaultTopN = 5

	got, err := e.GetRecommendations(context.Background(), "U",
		core.Options{Algorithm: core.AlgorithmUserBased})
	if err != nil {
		t.Fatalf("GetRecommendations() error = %v", err)
	}
	if len(got) > 5 {
		t.Errorf("default topN not applied: %d results", len(got))
	}
}

package hybrid

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rushteam/personakit/core"
)

type stubStrategy struct {
	name     string
	items    []*core.Item
	err      error
	gotTopN  int
	gotCalls int
}

func (s *stubStrategy) Name() string { return s.name }
func (s *stubStrategy) Recommend(ctx context.Context, userID string, topN int) ([]*core.Item, error) {
	s.gotTopN = topN
	s.gotCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func scored(id string, score float64, strategyName, reason string) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	it.Strategy = strategyName
	it.Reason = reason
	return it
}

func TestCombiner_WeightedFusion(t *testing.T) {
	userArm := &stubStrategy{name: core.AlgorithmUserBased, items: []*core.Item{
		scored("a", 4, core.AlgorithmUserBased, "ru"),
		scored("b", 2, core.AlgorithmUserBased, "ru"),
	}}
	itemArm := &stubStrategy{name: core.AlgorithmItemBased, items: []*core.Item{
		scored("a", 1, core.AlgorithmItemBased, "ri"),
		scored("c", 5, core.AlgorithmItemBased, "ri"),
	}}
	contentArm := &stubStrategy{name: core.AlgorithmContentBased}

	c := NewCombiner(userArm, itemArm, contentArm, DefaultWeights(), zerolog.Nop())
	got, err := c.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}

	want := map[string]float64{
		"a": 0.4*4 + 0.4*1, // 两路都见过
		"b": 0.4 * 2,       // 缺席的策略贡献 0
		"c": 0.4 * 5,
	}
	for _, it := range got {
		if math.Abs(it.Score-want[it.ID]) > 1e-9 {
			t.Errorf("score(%s) = %v, want %v", it.ID, it.Score, want[it.ID])
		}
		if it.Strategy != core.AlgorithmHybrid {
			t.Errorf("strategy(%s) = %q, want hybrid", it.ID, it.Strategy)
		}
	}
	// a: 0.4*4 > 0.4*1 → reason 来自用户协同；c 只有物品协同给出
	if got[0].ID != "a" || got[0].Reason != "ru" {
		t.Errorf("top = (%s, %q), want (a, ru)", got[0].ID, got[0].Reason)
	}
	for _, it := range got {
		if it.ID == "c" && it.Reason != "ri" {
			t.Errorf("reason(c) = %q, want ri", it.Reason)
		}
	}
}

// 一路失败只降级为空贡献，其他路照常，整体不报错。
func TestCombiner_FailingArmDegrades(t *testing.T) {
	userArm := &stubStrategy{name: core.AlgorithmUserBased, err: errors.New("snapshot corrupted")}
	itemArm := &stubStrategy{name: core.AlgorithmItemBased, items: []*core.Item{
		scored("x", 2, core.AlgorithmItemBased, "ri"),
	}}
	contentArm := &stubStrategy{name: core.AlgorithmContentBased}

	c := NewCombiner(userArm, itemArm, contentArm, DefaultWeights(), zerolog.Nop())
	got, err := c.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("arm failure should not surface: %v", err)
	}
	if len(got) != 1 || got[0].ID != "x" {
		t.Fatalf("got %v, want single item x", got)
	}
	if math.Abs(got[0].Score-0.4*2) > 1e-9 {
		t.Errorf("score = %v, want %v", got[0].Score, 0.4*2)
	}
}

// 权重整体缩放不改变排序：{0.5,0.5,0} 与 {0.25,0.25,0} 排名一致。
func TestCombiner_WeightScaleRankEquivalence(t *testing.T) {
	mk := func() (*stubStrategy, *stubStrategy, *stubStrategy) {
		return &stubStrategy{name: core.AlgorithmUserBased, items: []*core.Item{
				scored("a", 4, core.AlgorithmUserBased, "r"),
				scored("b", 3, core.AlgorithmUserBased, "r"),
			}},
			&stubStrategy{name: core.AlgorithmItemBased, items: []*core.Item{
				scored("b", 5, core.AlgorithmItemBased, "r"),
				scored("c", 1, core.AlgorithmItemBased, "r"),
			}},
			&stubStrategy{name: core.AlgorithmContentBased}
	}

	u1, i1, c1 := mk()
	full := NewCombiner(u1, i1, c1, Weights{UserBased: 0.5, ItemBased: 0.5}, zerolog.Nop())
	a, _ := full.Recommend(context.Background(), "u", 10)

	u2, i2, c2 := mk()
	half := NewCombiner(u2, i2, c2, Weights{UserBased: 0.25, ItemBased: 0.25}, zerolog.Nop())
	b, _ := half.Recommend(context.Background(), "u", 10)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("rank %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
}

// 零权重的路不执行，候选请求量放大 overfetch 倍。
func TestCombiner_OverfetchAndZeroWeightSkip(t *testing.T) {
	userArm := &stubStrategy{name: core.AlgorithmUserBased}
	itemArm := &stubStrategy{name: core.AlgorithmItemBased}
	contentArm := &stubStrategy{name: core.AlgorithmContentBased}

	c := NewCombiner(userArm, itemArm, contentArm,
		Weights{UserBased: 0.5, ItemBased: 0.5, ContentBased: 0}, zerolog.Nop())
	if _, err := c.Recommend(context.Background(), "u1", 5); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if userArm.gotTopN != 10 {
		t.Errorf("arm asked for %d candidates, want %d", userArm.gotTopN, 10)
	}
	if contentArm.gotCalls != 0 {
		t.Error("zero-weight arm was executed")
	}
}

func TestCombiner_AllEmpty(t *testing.T) {
	c := NewCombiner(
		&stubStrategy{name: core.AlgorithmUserBased},
		&stubStrategy{name: core.AlgorithmItemBased},
		&stubStrategy{name: core.AlgorithmContentBased},
		DefaultWeights(), zerolog.Nop())

	got, err := c.Recommend(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty fusion, got %d", len(got))
	}
}

// 同分按 ID 升序，整体排序可复现。
func TestCombiner_TieBreakByID(t *testing.T) {
	userArm := &stubStrategy{name: core.AlgorithmUserBased, items: []*core.Item{
		scored("zeta", 2, core.AlgorithmUserBased, "r"),
		scored("alpha", 2, core.AlgorithmUserBased, "r"),
	}}
	c := NewCombiner(userArm,
		&stubStrategy{name: core.AlgorithmItemBased},
		&stubStrategy{name: core.AlgorithmContentBased},
		DefaultWeights(), zerolog.Nop())

	got, _ := c.Recommend(context.Background(), "u1", 10)
	if len(got) != 2 || got[0].ID != "alpha" || got[1].ID != "zeta" {
		t.Errorf("tie-break order wrong: %v", got)
	}
}

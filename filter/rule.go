package filter

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/personakit/core"
)

// RuleFilter 是 CEL (Common Expression Language) 规则过滤器。
// 表达式返回 true 表示过滤掉该物品。
//
// 表达式可以访问 item 变量（id/score/category/price/tags/labels）：
//   - `item.price > 500.0` → 过滤掉高价物品
//   - `item.category == "adult"` → 过滤掉某个类目
//   - `item.score < 0.1 && item.category != "promoted"` → 组合条件
//   - `"clearance" in item.tags` → 按标签过滤
//
// 表达式在构造时编译一次，之后可以安全地并发执行。
type RuleFilter struct {
	name string
	expr string
	prg  cel.Program
}

// NewRuleFilter 编译 CEL 表达式并返回过滤器。
// 表达式非法时立即返回错误，而不是留到执行期。
func NewRuleFilter(name, expr string) (*RuleFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, &core.DomainError{
			Module:  core.ModuleFilter,
			Code:    core.ErrorCodeInvalidInput,
			Message: fmt.Sprintf("rule %q compile error: %v", name, issues.Err()),
		}
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel program: %w", err)
	}

	if name == "" {
		name = "filter.rule"
	}
	return &RuleFilter{name: name, expr: expr, prg: prg}, nil
}

func (f *RuleFilter) Name() string { return f.name }

// Expr 返回原始表达式，供日志/排障使用。
func (f *RuleFilter) Expr() string { return f.expr }

func (f *RuleFilter) ShouldFilter(ctx context.Context, item *core.Item, desc core.ItemDescriptor) (bool, error) {
	if item == nil {
		return true, nil
	}

	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = map[string]any{
			"value":  v.Value,
			"source": v.Source,
		}
	}
	tags := make([]any, 0, len(desc.Tags))
	for _, tag := range desc.Tags {
		tags = append(tags, tag)
	}

	input := map[string]any{
		"item": map[string]any{
			"id":       item.ID,
			"score":    item.Score,
			"strategy": item.Strategy,
			"category": desc.Category,
			"price":    desc.Price,
			"tags":     tags,
			"labels":   labels,
		},
	}

	out, _, err := f.prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("rule %q eval error: %w", f.name, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q must return boolean, got %T", f.name, out.Value())
	}
	return result, nil
}

var _ Filter = (*RuleFilter)(nil)
var _ Filter = (*BlacklistFilter)(nil)

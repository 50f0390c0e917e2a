// Package builder 负责把声明式条件树编译成 rete 匹配网络。
// 编译一次、缓存在规则上；形态不合法的条件在这里立刻报错，
// 绝不推迟到评估阶段。
package builder

import (
	"fmt"

	"github.com/machellerogden/rules-engine/model"
	"github.com/machellerogden/rules-engine/rete"
)

// Compile 把一棵条件树编译成匹配网络的根节点。
// 顶层的裸 beta 测试没有可依附的模式，属于配置错误。
func Compile(cond model.Condition) (rete.Node, error) {
	if isBareTest(cond) {
		return nil, fmt.Errorf("裸 beta 测试必须位于 all/any 之内")
	}
	return compile(cond)
}

func compile(cond model.Condition) (rete.Node, error) {
	if n := shapeCount(cond); n > 1 {
		return nil, fmt.Errorf("条件同时设置了 %d 种形态键: %+v", n, cond)
	}
	// test/var/accumulate 只对模式条件有意义，
	// 挂在组合键上会被静默丢弃，必须在编译期拒绝
	if cond.Type == "" && (cond.Test != nil || cond.Var != "" || cond.Accumulate != nil) {
		return nil, fmt.Errorf("test/var/accumulate 必须依附于带 type 的模式条件: %+v", cond)
	}
	switch {
	case len(cond.All) > 0:
		return compileGroup(cond.All, false)

	case len(cond.Any) > 0:
		return compileGroup(cond.Any, true)

	case cond.Not != nil:
		inner, err := compile(*cond.Not)
		if err != nil {
			return nil, err
		}
		return rete.NewNotNode(inner), nil

	case cond.Exists != nil:
		inner, err := compile(*cond.Exists)
		if err != nil {
			return nil, err
		}
		return rete.NewExistsNode(inner), nil

	case cond.Type != "":
		return compilePattern(cond)

	default:
		return nil, fmt.Errorf("无法识别的条件形态: %+v", cond)
	}
}

// compileGroup 是两趟编译：第一趟收集模式子节点并构建 join/union，
// 第二趟把被推迟的裸 beta 测试按声明顺序包装到组合节点外层。
// beta 谓词需要兄弟模式 join 之后的完整绑定，所以必须先连接后过滤。
func compileGroup(children []model.Condition, union bool) (rete.Node, error) {
	var patterns []rete.Node
	var deferred []model.TupleTest

	for _, child := range children {
		if isBareTest(child) {
			deferred = append(deferred, child.Where)
			continue
		}
		node, err := compile(child)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, node)
	}

	var base rete.Node
	switch {
	case len(patterns) == 0:
		// 退化组：只有 beta 测试，给它们一个空绑定上下文
		base = rete.NewNoFactNode()
	case len(patterns) == 1:
		base = patterns[0]
	case union:
		base = rete.NewAnyNode(patterns...)
	default:
		base = rete.NewAllNode(patterns...)
	}

	for _, test := range deferred {
		base = rete.NewBetaTestNode(base, test)
	}
	return base, nil
}

func compilePattern(cond model.Condition) (rete.Node, error) {
	var node rete.Node = rete.NewAlphaNode(cond.Type, cond.Test, cond.Var)
	if acc := cond.Accumulate; acc != nil {
		if acc.Aggregator == nil || acc.Test == nil {
			return nil, fmt.Errorf("模式 %q 的 accumulate 块缺少 aggregator 或 test", cond.Type)
		}
		node = rete.NewAccumulatorNode(node, acc.Aggregator, acc.Test)
	}
	return node, nil
}

// shapeCount 统计条件设置了几种互斥的形态键。
func shapeCount(cond model.Condition) int {
	n := 0
	if len(cond.All) > 0 {
		n++
	}
	if len(cond.Any) > 0 {
		n++
	}
	if cond.Not != nil {
		n++
	}
	if cond.Exists != nil {
		n++
	}
	if cond.Type != "" {
		n++
	}
	if cond.Where != nil {
		n++
	}
	return n
}

// isBareTest 判断条件是否为纯 beta 测试（只设置了 Where）。
func isBareTest(cond model.Condition) bool {
	return cond.Where != nil &&
		cond.Type == "" &&
		len(cond.All) == 0 && len(cond.Any) == 0 &&
		cond.Not == nil && cond.Exists == nil &&
		cond.Test == nil && cond.Accumulate == nil && cond.Var == ""
}

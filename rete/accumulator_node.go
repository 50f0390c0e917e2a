package rete

import "github.com/machellerogden/rules-engine/model"

// AccumulatorNode 实现聚合再过滤：每次评估都完整物化子节点的
// 全部匹配，收集其贡献事实（按 ID 去重、保持发现顺序），
// 对全集应用聚合函数，聚合值通过阈值谓词后发出一个合成匹配，
// 携带整个事实列表作为贡献；否则不发出任何匹配。
// 不做增量聚合。

type AccumulatorNode struct {
	child Node
	agg   model.Aggregator
	test  model.ValueTest
}

func NewAccumulatorNode(child Node, agg model.Aggregator, test model.ValueTest) *AccumulatorNode {
	return &AccumulatorNode{child: child, agg: agg, test: test}
}

func (n *AccumulatorNode) Evaluate(wm *model.WorkingMemory) []Match {
	var facts []*model.Fact
	seen := make(map[string]struct{})
	for _, m := range n.child.Evaluate(wm) {
		for _, f := range m.Facts {
			if _, ok := seen[f.ID]; ok {
				continue
			}
			seen[f.ID] = struct{}{}
			facts = append(facts, f)
		}
	}

	value := n.agg.Aggregate(facts)
	if !n.test.Test(value) {
		return nil
	}
	// 聚合值没有单一事实指代，不产生变量绑定
	return []Match{{Facts: facts, Bindings: model.Bindings{}}}
}

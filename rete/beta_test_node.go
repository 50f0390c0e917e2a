package rete

import "github.com/machellerogden/rules-engine/model"

// BetaTestNode 包装一个子节点，对其每个匹配应用被推迟的
// 跨模式谓词，仅保留通过的匹配。单事实无法表达的约束
// （如 event.personName == person.name）都经由它过滤。

type BetaTestNode struct {
	child Node
	test  model.TupleTest
}

func NewBetaTestNode(child Node, test model.TupleTest) *BetaTestNode {
	return &BetaTestNode{child: child, test: test}
}

func (n *BetaTestNode) Evaluate(wm *model.WorkingMemory) []Match {
	var out []Match
	for _, m := range n.child.Evaluate(wm) {
		if n.test.Test(m.Facts, m.Bindings) {
			out = append(out, m)
		}
	}
	return out
}

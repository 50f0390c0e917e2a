package rete

import "github.com/machellerogden/rules-engine/model"

// AnyNode 实现析取：直接并联各子节点的匹配，不做合并，
// 每个子匹配独立成为一个激活候选。

type AnyNode struct {
	children []Node
}

func NewAnyNode(children ...Node) *AnyNode {
	return &AnyNode{children: children}
}

func (n *AnyNode) Evaluate(wm *model.WorkingMemory) []Match {
	var out []Match
	for _, child := range n.children {
		out = append(out, child.Evaluate(wm)...)
	}
	return out
}

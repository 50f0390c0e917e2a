package rete

import "github.com/machellerogden/rules-engine/model"

// AllNode 实现合取连接：对子节点匹配集做笛卡尔积，
// 只保留变量绑定一致的组合。没有共享变量时退化为全积。

type AllNode struct {
	children []Node
}

func NewAllNode(children ...Node) *AllNode {
	return &AllNode{children: children}
}

func (n *AllNode) Evaluate(wm *model.WorkingMemory) []Match {
	// 从单个空匹配出发逐个子节点做 join，
	// 任一子节点无匹配则整体无匹配。
	acc := []Match{{Bindings: model.Bindings{}}}
	for _, child := range n.children {
		rights := child.Evaluate(wm)
		if len(rights) == 0 {
			return nil
		}
		var next []Match
		for _, left := range acc {
			for _, right := range rights {
				if joined, ok := merge(left, right); ok {
					next = append(next, joined)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		acc = next
	}
	return acc
}

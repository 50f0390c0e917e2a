package rete

import "github.com/machellerogden/rules-engine/model"

// ExistsNode 实现 "exists <pattern>" 语义：内部条件只要有
// 至少一个匹配，就产生一个空匹配作为布尔门控——
// 不按内部匹配数量展开枚举。

type ExistsNode struct {
	inner Node
}

func NewExistsNode(inner Node) *ExistsNode {
	return &ExistsNode{inner: inner}
}

func (e *ExistsNode) Evaluate(wm *model.WorkingMemory) []Match {
	if len(e.inner.Evaluate(wm)) == 0 {
		return nil
	}
	return []Match{{Bindings: model.Bindings{}}}
}

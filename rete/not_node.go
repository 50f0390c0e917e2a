package rete

import "github.com/machellerogden/rules-engine/model"

// NotNode 实现 "not <pattern>" 语义：当且仅当内部条件
// 在当前工作内存下零匹配时，产生一个空匹配（无绑定、无贡献事实）。
// 这是模式缺失，不是单谓词的布尔取反——内部条件自身的 join
// 也被完整计算在内。

type NotNode struct {
	inner Node
}

func NewNotNode(inner Node) *NotNode {
	return &NotNode{inner: inner}
}

func (n *NotNode) Evaluate(wm *model.WorkingMemory) []Match {
	if len(n.inner.Evaluate(wm)) != 0 {
		return nil
	}
	return []Match{{Bindings: model.Bindings{}}}
}

package rete

import "github.com/machellerogden/rules-engine/model"

// NoFactNode 恒定产出一个空匹配。
// 用于只含裸 beta 测试的退化 all/any 组：没有模式可供连接时，
// 被推迟的谓词仍需要一个绑定上下文来过滤。

type NoFactNode struct{}

func NewNoFactNode() *NoFactNode { return &NoFactNode{} }

func (*NoFactNode) Evaluate(*model.WorkingMemory) []Match {
	return []Match{{Bindings: model.Bindings{}}}
}

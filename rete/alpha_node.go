package rete

import "github.com/machellerogden/rules-engine/model"

// AlphaNode 处理单模式条件过滤：对声明类型的每条存活事实
// 应用 test 谓词，每条通过的事实产生一个独立匹配。
// varName 非空时该事实进入变量绑定，否则仅作为匿名贡献事实携带。

type AlphaNode struct {
	factType string
	test     model.FactTest
	varName  string
}

// NewAlphaNode 创建 alpha 节点；test 为 nil 时匹配该类型的全部事实。
func NewAlphaNode(factType string, test model.FactTest, varName string) *AlphaNode {
	return &AlphaNode{factType: factType, test: test, varName: varName}
}

func (a *AlphaNode) Evaluate(wm *model.WorkingMemory) []Match {
	var out []Match
	for _, f := range wm.OfType(a.factType) {
		if a.test != nil && !a.test.Test(f) {
			continue
		}
		m := Match{Facts: []*model.Fact{f}, Bindings: model.Bindings{}}
		if a.varName != "" {
			m.Bindings[a.varName] = f
		}
		out = append(out, m)
	}
	return out
}

// Package rete 实现规则条件编译后的匹配网络节点。
// 与经典 rete 的增量传播不同，这里的节点在每个评估周期
// 对当前工作内存整体重算：Match 只被重新计算，从不被原地修改，
// 去重交给 agenda 的指纹历史完成。
package rete

import "github.com/machellerogden/rules-engine/model"

// Node 是匹配网络中所有节点的统一接口。
type Node interface {
	// Evaluate 针对当前工作内存计算本节点的全部匹配。
	Evaluate(wm *model.WorkingMemory) []Match
}

// Match 是一次满足条件的事实组合：
// Facts 按模式顺序排列的贡献事实，Bindings 为变量绑定。
type Match struct {
	Facts    []*model.Fact
	Bindings model.Bindings
}

// merge 合并两个匹配。若同名变量绑定了不同事实则判定冲突，
// 返回 ok=false；这正是 join 按共享变量键连接的含义。
func merge(left, right Match) (Match, bool) {
	for name, f := range right.Bindings {
		if prev, ok := left.Bindings[name]; ok && prev.ID != f.ID {
			return Match{}, false
		}
	}

	out := Match{
		Facts:    make([]*model.Fact, 0, len(left.Facts)+len(right.Facts)),
		Bindings: make(model.Bindings, len(left.Bindings)+len(right.Bindings)),
	}
	out.Facts = append(out.Facts, left.Facts...)
	out.Facts = append(out.Facts, right.Facts...)
	for name, f := range left.Bindings {
		out.Bindings[name] = f
	}
	for name, f := range right.Bindings {
		out.Bindings[name] = f
	}
	return out, true
}

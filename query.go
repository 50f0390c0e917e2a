package rulesengine

import "github.com/machellerogden/rules-engine/model"

// Query 是绕过规则网络、直接针对工作内存的类型化查询。
// Where 惰性累积过滤谓词，Execute 才真正物化结果。
// 随时可以调用，包括在动作回调中。
type Query struct {
	wm       *model.WorkingMemory
	factType string
	tests    []model.FactTest
}

// Query 创建针对某一事实类型的查询。
func (e *Engine) Query(factType string) *Query {
	return &Query{wm: e.wm, factType: factType}
}

// Where 追加一个过滤谓词，返回查询自身以便链式调用。
func (q *Query) Where(test model.FactTest) *Query {
	q.tests = append(q.tests, test)
	return q
}

// WhereFunc 是 Where 的函数便捷形式。
func (q *Query) WhereFunc(fn func(*model.Fact) bool) *Query {
	return q.Where(model.FactTestFunc(fn))
}

// Execute 按插入顺序返回满足全部谓词的事实。
func (q *Query) Execute() []*model.Fact {
	var out []*model.Fact
	for _, f := range q.wm.OfType(q.factType) {
		keep := true
		for _, test := range q.tests {
			if !test.Test(f) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, f)
		}
	}
	return out
}

// Count 返回满足条件的事实数量。
func (q *Query) Count() int { return len(q.Execute()) }

package model

// Bindings 是变量名到其绑定事实的映射。
type Bindings map[string]*Fact

// FactTest 判断单条事实是否满足 alpha 条件。
type FactTest interface {
	Test(f *Fact) bool
}

// FactTestFunc 让普通函数实现 FactTest。
type FactTestFunc func(f *Fact) bool

func (fn FactTestFunc) Test(f *Fact) bool { return fn(f) }

// TupleTest 是跨模式的 beta 谓词：在多条事实完成连接之后，
// 基于累计的事实序列与变量绑定做过滤。
type TupleTest interface {
	Test(facts []*Fact, b Bindings) bool
}

// TupleTestFunc 让普通函数实现 TupleTest。
type TupleTestFunc func(facts []*Fact, b Bindings) bool

func (fn TupleTestFunc) Test(facts []*Fact, b Bindings) bool { return fn(facts, b) }

// Aggregator 把一组事实折叠为一个聚合值（如计数、求和）。
type Aggregator interface {
	Aggregate(facts []*Fact) interface{}
}

// AggregatorFunc 让普通函数实现 Aggregator。
type AggregatorFunc func(facts []*Fact) interface{}

func (fn AggregatorFunc) Aggregate(facts []*Fact) interface{} { return fn(facts) }

// ValueTest 判断聚合值是否满足阈值条件。
type ValueTest interface {
	Test(v interface{}) bool
}

// ValueTestFunc 让普通函数实现 ValueTest。
type ValueTestFunc func(v interface{}) bool

func (fn ValueTestFunc) Test(v interface{}) bool { return fn(v) }

// Accumulate 描述模式条件上的聚合块：先用 Aggregator 汇总全部匹配事实，
// 再用 Test 判断聚合值，通过才产生一个合成匹配。
type Accumulate struct {
	Aggregator Aggregator
	Test       ValueTest
}

// Condition 是声明式条件树的一个节点，编译后不可变。
// 同一节点只允许设置一种形态：
//   - All / Any：组合子节点（连接 / 并集）
//   - Not / Exists：包装内部条件（否定 / 存在量词）
//   - Type [+ Test + Var + Accumulate]：单模式 alpha 条件
//   - Where：裸 beta 测试，只能作为 All/Any 的子节点出现
type Condition struct {
	All    []Condition
	Any    []Condition
	Not    *Condition
	Exists *Condition

	Type       string
	Test       FactTest
	Var        string
	Accumulate *Accumulate

	Where TupleTest
}

// Action 是规则触发时的动作回调。
// facts 为本次激活的贡献事实（按模式顺序），b 为变量绑定。
// 返回非 nil 错误会中止本次 Run 并原样上抛。
type Action func(facts []*Fact, rule string, b Bindings) error

// Rule 表示一条注册到引擎的规则。
// Salience 越大优先级越高，默认 0；注册后不可变。
type Rule struct {
	Name       string
	Salience   int
	Conditions Condition
	Action     Action
}

package model

import "fmt"

// 本文件定义规则文件（YAML/JSON）的声明式 schema，
// 以及把它编译成程序化 Condition 树的逻辑。
// 谓词在这里只能以 field/operator/value 的形式声明；
// 需要任意函数的场景走程序化 API。

// RuleSet 表示一组声明式规则，通常从 YAML 文件加载。
type RuleSet struct {
	Rules []RuleDef `yaml:"rules" json:"rules"`
}

// RuleDef 是单条规则的声明式定义。
type RuleDef struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Salience    int          `yaml:"salience,omitempty" json:"salience,omitempty"`
	When        ConditionDef `yaml:"when" json:"when"`
	Then        ActionDef    `yaml:"then" json:"then"`
}

// ConditionDef 是条件树节点的声明式形态，与 Condition 一一对应。
type ConditionDef struct {
	All    []ConditionDef `yaml:"all,omitempty" json:"all,omitempty"`
	Any    []ConditionDef `yaml:"any,omitempty" json:"any,omitempty"`
	Not    *ConditionDef  `yaml:"not,omitempty" json:"not,omitempty"`
	Exists *ConditionDef  `yaml:"exists,omitempty" json:"exists,omitempty"`

	Type     string      `yaml:"type,omitempty" json:"type,omitempty"`
	Field    string      `yaml:"field,omitempty" json:"field,omitempty"`
	Operator string      `yaml:"operator,omitempty" json:"operator,omitempty"`
	Value    interface{} `yaml:"value,omitempty" json:"value,omitempty"`
	Var      string      `yaml:"var,omitempty" json:"var,omitempty"`

	Test       *TestDef       `yaml:"test,omitempty" json:"test,omitempty"`
	Accumulate *AccumulateDef `yaml:"accumulate,omitempty" json:"accumulate,omitempty"`
}

// TestDef 声明一个跨模式的字段比较（beta 测试），
// 左右两侧都引用已绑定的变量。
type TestDef struct {
	LeftVar    string `yaml:"left_var" json:"left_var"`
	LeftField  string `yaml:"left_field" json:"left_field"`
	Operator   string `yaml:"operator" json:"operator"`
	RightVar   string `yaml:"right_var" json:"right_var"`
	RightField string `yaml:"right_field" json:"right_field"`
}

// AccumulateDef 声明模式上的聚合块："count" 或 "sum" 一个字段，
// 再用 operator/value 判断聚合值。
type AccumulateDef struct {
	Aggregate string      `yaml:"aggregate" json:"aggregate"`
	Field     string      `yaml:"field,omitempty" json:"field,omitempty"`
	Operator  string      `yaml:"operator" json:"operator"`
	Value     interface{} `yaml:"value" json:"value"`
}

// ActionDef 声明规则触发时的动作。
// "log" 记录一条消息；"assert" 把 data 作为新事实插回工作内存。
type ActionDef struct {
	Type    string                 `yaml:"type" json:"type"`
	Message string                 `yaml:"message,omitempty" json:"message,omitempty"`
	Data    map[string]interface{} `yaml:"data,omitempty" json:"data,omitempty"`
}

// Compile 把声明式条件编译为程序化 Condition 树。
// 声明层面的错误（未知聚合器、test 缺少变量等）在这里立刻失败。
func (d ConditionDef) Compile() (Condition, error) {
	switch {
	case len(d.All) > 0:
		children, err := compileChildren(d.All)
		if err != nil {
			return Condition{}, err
		}
		return Condition{All: children}, nil

	case len(d.Any) > 0:
		children, err := compileChildren(d.Any)
		if err != nil {
			return Condition{}, err
		}
		return Condition{Any: children}, nil

	case d.Not != nil:
		inner, err := d.Not.Compile()
		if err != nil {
			return Condition{}, err
		}
		return Condition{Not: &inner}, nil

	case d.Exists != nil:
		inner, err := d.Exists.Compile()
		if err != nil {
			return Condition{}, err
		}
		return Condition{Exists: &inner}, nil

	case d.Type != "":
		return d.compilePattern()

	case d.Test != nil:
		where, err := d.Test.compile()
		if err != nil {
			return Condition{}, err
		}
		return Condition{Where: where}, nil

	default:
		return Condition{}, fmt.Errorf("无法识别的条件定义: %+v", d)
	}
}

func compileChildren(defs []ConditionDef) ([]Condition, error) {
	children := make([]Condition, 0, len(defs))
	for _, d := range defs {
		c, err := d.Compile()
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, nil
}

func (d ConditionDef) compilePattern() (Condition, error) {
	cond := Condition{Type: d.Type, Var: d.Var}

	if d.Field != "" {
		field, operator, value := d.Field, d.Operator, d.Value
		if operator == "" {
			return Condition{}, fmt.Errorf("条件 %s.%s 缺少 operator", d.Type, d.Field)
		}
		cond.Test = FactTestFunc(func(f *Fact) bool {
			fv := f.Field(field)
			if fv == nil {
				return false
			}
			return CompareValues(fv, operator, value)
		})
	}

	if d.Accumulate != nil {
		acc, err := d.Accumulate.compile()
		if err != nil {
			return Condition{}, err
		}
		cond.Accumulate = acc
	}
	return cond, nil
}

func (t TestDef) compile() (TupleTest, error) {
	if t.LeftVar == "" || t.RightVar == "" {
		return nil, fmt.Errorf("test 必须指定 left_var 与 right_var: %+v", t)
	}
	if t.Operator == "" {
		return nil, fmt.Errorf("test %s/%s 缺少 operator", t.LeftVar, t.RightVar)
	}
	def := t
	return TupleTestFunc(func(_ []*Fact, b Bindings) bool {
		left, right := b[def.LeftVar], b[def.RightVar]
		if left == nil || right == nil {
			return false
		}
		lv := left.Field(def.LeftField)
		rv := right.Field(def.RightField)
		if lv == nil || rv == nil {
			return false
		}
		return CompareValues(lv, def.Operator, rv)
	}), nil
}

func (a AccumulateDef) compile() (*Accumulate, error) {
	var agg Aggregator
	switch a.Aggregate {
	case "count":
		agg = AggregatorFunc(func(facts []*Fact) interface{} {
			return len(facts)
		})
	case "sum":
		if a.Field == "" {
			return nil, fmt.Errorf("sum 聚合缺少 field")
		}
		field := a.Field
		agg = AggregatorFunc(func(facts []*Fact) interface{} {
			total := 0.0
			for _, f := range facts {
				if v, ok := f.Float(field); ok {
					total += v
				}
			}
			return total
		})
	default:
		return nil, fmt.Errorf("不支持的聚合器: %q", a.Aggregate)
	}

	if a.Operator == "" {
		return nil, fmt.Errorf("accumulate 缺少 operator")
	}
	operator, value := a.Operator, a.Value
	return &Accumulate{
		Aggregator: agg,
		Test: ValueTestFunc(func(v interface{}) bool {
			return CompareValues(v, operator, value)
		}),
	}, nil
}

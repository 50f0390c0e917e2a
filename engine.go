// Package rulesengine 实现一个进程内的前向链推理引擎：
// 工作内存中的类型化事实与声明式规则匹配，规则条件被一次性
// 编译成匹配网络，Run 反复评估全部规则直到不再产生新激活。
// 引擎约定单 goroutine 同步使用；动作回调可以同步重入
// （插入/撤回事实、注册新规则），变更在下一个匹配阶段生效。
package rulesengine

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/machellerogden/rules-engine/agenda"
	"github.com/machellerogden/rules-engine/builder"
	"github.com/machellerogden/rules-engine/model"
	"github.com/machellerogden/rules-engine/rete"
)

// ErrMaxCycles 表示 Run 在达到配置的周期上限时仍未收敛。
var ErrMaxCycles = errors.New("run 超过最大评估周期数仍未达到不动点")

// Option 配置引擎。
type Option func(*Engine)

// WithLogger 指定结构化日志器，默认丢弃全部日志。
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMaxCycles 设置 Run 的评估周期上限，作为失控规则集的保险丝。
// 默认 0 表示不设上限（忠实于不动点语义）；超限时 Run 返回 ErrMaxCycles。
func WithMaxCycles(n int) Option {
	return func(e *Engine) { e.maxCycles = n }
}

// compiledRule 把规则与其编译好的匹配网络缓存在一起。
type compiledRule struct {
	rule    model.Rule
	network rete.Node
}

// Engine 汇聚工作内存、已编译规则与触发历史。
type Engine struct {
	wm        *model.WorkingMemory
	rules     []compiledRule
	names     map[string]struct{}
	history   *agenda.FireHistory
	log       *zap.Logger
	maxCycles int
}

func New(opts ...Option) *Engine {
	e := &Engine{
		wm:      model.NewWorkingMemory(),
		names:   make(map[string]struct{}),
		history: agenda.NewFireHistory(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddFact 校验并插入一条事实，data 必须携带非空 "type" 字段。
// 可以在动作回调中重入调用，新事实在下一个匹配阶段可见。
func (e *Engine) AddFact(data map[string]interface{}) (*model.Fact, error) {
	f, err := e.wm.Insert(data)
	if err != nil {
		return nil, err
	}
	e.log.Debug("fact 已插入",
		zap.String("type", f.Type),
		zap.String("id", f.ID))
	return f, nil
}

// Retract 撤回一条事实，后续匹配阶段不再看到它。
// 不会回溯撤销已触发的激活。
func (e *Engine) Retract(f *model.Fact) bool {
	if f == nil {
		return false
	}
	return e.RetractByID(f.ID)
}

// RetractByID 按事实 ID 撤回。
func (e *Engine) RetractByID(id string) bool {
	ok := e.wm.Retract(id)
	if ok {
		e.log.Debug("fact 已撤回", zap.String("id", id))
	}
	return ok
}

// AddRule 注册一条规则：规则名必须唯一，条件树立即编译，
// 形态不合法在此处报错，绝不推迟到 Run。
func (e *Engine) AddRule(r model.Rule) error {
	cr, err := e.compileRule(r, nil)
	if err != nil {
		return err
	}
	e.commitRule(cr)
	return nil
}

// compileRule 校验并编译单条规则但不注册。
// pending 携带同批次中已编译规则的名字，用于批量加载时查重。
func (e *Engine) compileRule(r model.Rule, pending map[string]struct{}) (compiledRule, error) {
	if r.Name == "" {
		return compiledRule{}, fmt.Errorf("规则缺少名称")
	}
	if _, dup := e.names[r.Name]; dup {
		return compiledRule{}, fmt.Errorf("规则名重复: %q", r.Name)
	}
	if _, dup := pending[r.Name]; dup {
		return compiledRule{}, fmt.Errorf("规则名重复: %q", r.Name)
	}
	if r.Action == nil {
		return compiledRule{}, fmt.Errorf("规则 %q 缺少动作", r.Name)
	}
	network, err := builder.Compile(r.Conditions)
	if err != nil {
		return compiledRule{}, fmt.Errorf("编译规则 %q 失败: %w", r.Name, err)
	}
	return compiledRule{rule: r, network: network}, nil
}

func (e *Engine) commitRule(cr compiledRule) {
	e.rules = append(e.rules, cr)
	e.names[cr.rule.Name] = struct{}{}
	e.log.Debug("规则已注册",
		zap.String("rule", cr.rule.Name),
		zap.Int("salience", cr.rule.Salience))
}

// Run 驱动匹配-触发循环直到不动点：
//  1. 匹配：对每条规则评估其网络，得到当前激活集
//  2. 去重：丢弃指纹已在触发历史中的激活
//  3. 排序：salience 降序，平局按注册顺序、发现顺序稳定排序
//  4. 触发：先记录指纹再调用动作，动作中的重入变更留给下一周期
//  5. 某个完整周期零新激活时返回
//
// 动作返回错误会中止本次 Run 并上抛；已记录的触发历史不回滚。
func (e *Engine) Run() error {
	for cycle := 0; ; cycle++ {
		if e.maxCycles > 0 && cycle >= e.maxCycles {
			return fmt.Errorf("%w: max_cycles=%d", ErrMaxCycles, e.maxCycles)
		}

		ag := agenda.New()
		for i, cr := range e.rules {
			for j, m := range cr.network.Evaluate(e.wm) {
				act := agenda.NewActivation(cr.rule, i, j, m.Facts, m.Bindings)
				if e.history.Seen(act.Fingerprint) {
					continue
				}
				ag.Add(act)
			}
		}

		if ag.Size() == 0 {
			e.log.Debug("run 达到不动点", zap.Int("cycles", cycle))
			return nil
		}
		ag.Sort()

		for {
			act, ok := ag.Next()
			if !ok {
				break
			}
			// 先记录指纹再执行动作，动作内的重入插入
			// 不可能让同一激活再次排队
			if !e.history.Record(act.Fingerprint) {
				continue
			}
			e.log.Debug("规则触发",
				zap.String("rule", act.RuleName),
				zap.Int("salience", act.Salience),
				zap.Int("facts", len(act.Facts)))
			if err := act.Action(act.Facts, act.RuleName, act.Bindings); err != nil {
				return fmt.Errorf("规则 %q 动作执行失败: %w", act.RuleName, err)
			}
		}
	}
}

// LoadRulesFromYAML 从 YAML 文件加载声明式规则集并逐条注册。
func (e *Engine) LoadRulesFromYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取规则文件失败: %w", err)
	}
	var rs model.RuleSet
	if err := yaml.UnmarshalStrict(raw, &rs); err != nil {
		return fmt.Errorf("解析规则文件 %s 失败: %w", path, err)
	}
	return e.AddRuleSet(rs)
}

// AddRuleSet 编译并注册一组声明式规则。
// 全有或全无：整组全部编译通过后才一次性注册，
// 任何一条失败都不会留下半套规则。
func (e *Engine) AddRuleSet(rs model.RuleSet) error {
	staged := make([]compiledRule, 0, len(rs.Rules))
	pending := make(map[string]struct{}, len(rs.Rules))
	for _, def := range rs.Rules {
		cond, err := def.When.Compile()
		if err != nil {
			return fmt.Errorf("规则 %q 条件不合法: %w", def.Name, err)
		}
		action, err := e.buildAction(def)
		if err != nil {
			return err
		}
		cr, err := e.compileRule(model.Rule{
			Name:       def.Name,
			Salience:   def.Salience,
			Conditions: cond,
			Action:     action,
		}, pending)
		if err != nil {
			return err
		}
		staged = append(staged, cr)
		pending[cr.rule.Name] = struct{}{}
	}
	for _, cr := range staged {
		e.commitRule(cr)
	}
	return nil
}

// buildAction 把声明式动作编译为回调。
// "log" 记录结构化日志；"assert" 把 data 作为新事实重入插回。
func (e *Engine) buildAction(def model.RuleDef) (model.Action, error) {
	then := def.Then
	switch then.Type {
	case "log", "":
		return func(facts []*model.Fact, rule string, _ model.Bindings) error {
			e.log.Info("规则触发",
				zap.String("rule", rule),
				zap.String("message", then.Message),
				zap.Int("facts", len(facts)))
			return nil
		}, nil
	case "assert":
		if len(then.Data) == 0 {
			return nil, fmt.Errorf("规则 %q 的 assert 动作缺少 data", def.Name)
		}
		return func([]*model.Fact, string, model.Bindings) error {
			_, err := e.AddFact(then.Data)
			return err
		}, nil
	default:
		return nil, fmt.Errorf("规则 %q 使用了未知动作类型 %q", def.Name, then.Type)
	}
}

// Package agenda 管理激活的排序与去重。
// 每个评估周期产生的新激活先按指纹对照触发历史去重，
// 再按 salience 排序后依次触发。
package agenda

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/machellerogden/rules-engine/model"
)

// Activation 表示"某条规则的条件被某个具体事实组合满足"。
// 激活只会被重新计算，不会被修改。
type Activation struct {
	RuleName    string
	Salience    int
	Facts       []*model.Fact
	Bindings    model.Bindings
	Action      model.Action
	Fingerprint string

	// 稳定排序的平局键：规则注册顺序、匹配发现顺序
	ruleOrder  int
	matchOrder int
}

// NewActivation 构造激活并计算其指纹。
func NewActivation(rule model.Rule, ruleOrder, matchOrder int, facts []*model.Fact, b model.Bindings) Activation {
	return Activation{
		RuleName:    rule.Name,
		Salience:    rule.Salience,
		Facts:       facts,
		Bindings:    b,
		Action:      rule.Action,
		Fingerprint: Fingerprint(rule.Name, facts),
		ruleOrder:   ruleOrder,
		matchOrder:  matchOrder,
	}
}

// Fingerprint 由规则标识与排序后的贡献事实 ID 确定性地导出。
// 同一规则、同一事实组合永远得到同一指纹。
func Fingerprint(ruleName string, facts []*model.Fact) string {
	ids := make([]string, 0, len(facts))
	for _, f := range facts {
		ids = append(ids, f.ID)
	}
	sort.Strings(ids)
	sum := sha1.Sum([]byte(ruleName + "|" + strings.Join(ids, "|")))
	return hex.EncodeToString(sum[:])
}

// FireHistory 记录已触发激活的指纹集合。
// 在引擎实例的整个生命周期内只增不减（无淘汰）——
// 这正是跨多次 Run 调用防止重复触发的依据。
type FireHistory struct {
	fired map[string]struct{}
}

func NewFireHistory() *FireHistory {
	return &FireHistory{fired: make(map[string]struct{})}
}

// Seen 判断指纹是否已触发过。
func (h *FireHistory) Seen(fp string) bool {
	_, ok := h.fired[fp]
	return ok
}

// Record 记录指纹；若已存在返回 false。
func (h *FireHistory) Record(fp string) bool {
	if _, ok := h.fired[fp]; ok {
		return false
	}
	h.fired[fp] = struct{}{}
	return true
}

// Size 返回历史中的指纹数量。
func (h *FireHistory) Size() int { return len(h.fired) }

// Agenda 收集单个周期内的新激活并按优先级排序。
type Agenda struct {
	list []Activation
}

func New() *Agenda { return &Agenda{} }

func (a *Agenda) Add(act Activation) {
	a.list = append(a.list, act)
}

// Sort 按 salience 降序稳定排序；
// 同优先级按规则注册顺序、再按匹配发现顺序。
func (a *Agenda) Sort() {
	sort.SliceStable(a.list, func(i, j int) bool {
		x, y := a.list[i], a.list[j]
		if x.Salience != y.Salience {
			return x.Salience > y.Salience
		}
		if x.ruleOrder != y.ruleOrder {
			return x.ruleOrder < y.ruleOrder
		}
		return x.matchOrder < y.matchOrder
	})
}

// Next 按序取出下一个激活。
func (a *Agenda) Next() (Activation, bool) {
	if len(a.list) == 0 {
		return Activation{}, false
	}
	act := a.list[0]
	a.list = a.list[1:]
	return act, true
}

// Size 返回待触发激活数量。
func (a *Agenda) Size() int { return len(a.list) }

package rete

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machellerogden/rules-engine/model"
)

func insert(t *testing.T, wm *model.WorkingMemory, data map[string]interface{}) *model.Fact {
	t.Helper()
	f, err := wm.Insert(data)
	require.NoError(t, err)
	return f
}

// names 把匹配集合压成每个匹配的 name 字段序列，便于断言。
func names(matches []Match) [][]string {
	out := make([][]string, 0, len(matches))
	for _, m := range matches {
		var row []string
		for _, f := range m.Facts {
			name, _ := f.Str("name")
			row = append(row, name)
		}
		out = append(out, row)
	}
	return out
}

func adultTest() model.FactTest {
	return model.FactTestFunc(func(f *model.Fact) bool {
		age, ok := f.Float("age")
		return ok && age >= 18
	})
}

func TestAlphaNodeFiltersByTypeAndTest(t *testing.T) {
	wm := model.NewWorkingMemory()
	insert(t, wm, map[string]interface{}{"type": "Person", "name": "Alice", "age": 30})
	insert(t, wm, map[string]interface{}{"type": "Person", "name": "Bob", "age": 17})
	insert(t, wm, map[string]interface{}{"type": "Robot", "name": "R2", "age": 99})

	node := NewAlphaNode("Person", adultTest(), "p")
	matches := node.Evaluate(wm)

	require.Len(t, matches, 1)
	assert.Equal(t, [][]string{{"Alice"}}, names(matches))
	require.Contains(t, matches[0].Bindings, "p")
	name, _ := matches[0].Bindings["p"].Str("name")
	assert.Equal(t, "Alice", name)
}

func TestAlphaNodeNilTestMatchesAll(t *testing.T) {
	wm := model.NewWorkingMemory()
	insert(t, wm, map[string]interface{}{"type": "Person", "name": "a"})
	insert(t, wm, map[string]interface{}{"type": "Person", "name": "b"})

	node := NewAlphaNode("Person", nil, "")
	matches := node.Evaluate(wm)
	require.Len(t, matches, 2)
	assert.Empty(t, matches[0].Bindings, "无 var 时不产生绑定")
}

func TestAllNodeJoinConsistency(t *testing.T) {
	wm := model.NewWorkingMemory()
	alice := insert(t, wm, map[string]interface{}{"type": "Person", "name": "Alice"})
	insert(t, wm, map[string]interface{}{"type": "Person", "name": "Bob"})
	insert(t, wm, map[string]interface{}{"type": "Event", "name": "ev1", "person": "Alice"})

	// 两个子节点绑定同名变量 p：只有同一事实的组合能通过
	left := NewAlphaNode("Person", nil, "p")
	right := NewAlphaNode("Person", model.FactTestFunc(func(f *model.Fact) bool {
		n, _ := f.Str("name")
		return n == "Alice"
	}), "p")

	matches := NewAllNode(left, right).Evaluate(wm)
	require.Len(t, matches, 1)
	assert.Equal(t, alice.ID, matches[0].Bindings["p"].ID)
	assert.Len(t, matches[0].Facts, 2, "两个子节点各贡献一次")
}

func TestAllNodeCrossProductWithoutSharedVars(t *testing.T) {
	wm := model.NewWorkingMemory()
	insert(t, wm, map[string]interface{}{"type": "A", "name": "a1"})
	insert(t, wm, map[string]interface{}{"type": "A", "name": "a2"})
	insert(t, wm, map[string]interface{}{"type": "B", "name": "b1"})
	insert(t, wm, map[string]interface{}{"type": "B", "name": "b2"})

	node := NewAllNode(NewAlphaNode("A", nil, "a"), NewAlphaNode("B", nil, "b"))
	matches := node.Evaluate(wm)
	require.Len(t, matches, 4, "无共享变量退化为全积")

	got := names(matches)
	sort.Slice(got, func(i, j int) bool {
		return got[i][0]+got[i][1] < got[j][0]+got[j][1]
	})
	want := [][]string{{"a1", "b1"}, {"a1", "b2"}, {"a2", "b1"}, {"a2", "b2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("组合不符 (-want +got):\n%s", diff)
	}
}

func TestAllNodeEmptyChildYieldsNothing(t *testing.T) {
	wm := model.NewWorkingMemory()
	insert(t, wm, map[string]interface{}{"type": "A", "name": "a1"})

	node := NewAllNode(NewAlphaNode("A", nil, ""), NewAlphaNode("Missing", nil, ""))
	assert.Empty(t, node.Evaluate(wm))
}

func TestAnyNodeUnion(t *testing.T) {
	wm := model.NewWorkingMemory()
	insert(t, wm, map[string]interface{}{"type": "A", "name": "a1"})
	insert(t, wm, map[string]interface{}{"type": "B", "name": "b1"})
	insert(t, wm, map[string]interface{}{"type": "B", "name": "b2"})

	node := NewAnyNode(NewAlphaNode("A", nil, ""), NewAlphaNode("B", nil, ""))
	matches := node.Evaluate(wm)
	assert.Equal(t, [][]string{{"a1"}, {"b1"}, {"b2"}}, names(matches),
		"析取原样并联各子匹配")
}

func TestBetaTestNodeFilters(t *testing.T) {
	wm := model.NewWorkingMemory()
	insert(t, wm, map[string]interface{}{"type": "Person", "name": "Alice"})
	insert(t, wm, map[string]interface{}{"type": "Person", "name": "Bob"})
	insert(t, wm, map[string]interface{}{"type": "Event", "person": "Alice", "name": "ev1"})

	join := NewAllNode(NewAlphaNode("Person", nil, "p"), NewAlphaNode("Event", nil, "e"))
	node := NewBetaTestNode(join, model.TupleTestFunc(func(_ []*model.Fact, b model.Bindings) bool {
		pn, _ := b["p"].Str("name")
		en, _ := b["e"].Str("person")
		return pn == en
	}))

	matches := node.Evaluate(wm)
	require.Len(t, matches, 1)
	assert.Equal(t, [][]string{{"Alice", "ev1"}}, names(matches))
}

func TestNotNodeGate(t *testing.T) {
	wm := model.NewWorkingMemory()
	node := NewNotNode(NewAlphaNode("Alarm", nil, ""))

	matches := node.Evaluate(wm)
	require.Len(t, matches, 1, "内部零匹配时恰好产生一个空匹配")
	assert.Empty(t, matches[0].Facts)
	assert.Empty(t, matches[0].Bindings)

	insert(t, wm, map[string]interface{}{"type": "Alarm"})
	assert.Empty(t, node.Evaluate(wm), "出现满足事实后被抑制")
}

func TestExistsNodeGate(t *testing.T) {
	wm := model.NewWorkingMemory()
	node := NewExistsNode(NewAlphaNode("Session", nil, ""))

	assert.Empty(t, node.Evaluate(wm))

	insert(t, wm, map[string]interface{}{"type": "Session"})
	insert(t, wm, map[string]interface{}{"type": "Session"})
	matches := node.Evaluate(wm)
	require.Len(t, matches, 1, "存在量词是布尔门控，不随内部匹配数展开")
	assert.Empty(t, matches[0].Facts)
}

func TestAccumulatorNodeThreshold(t *testing.T) {
	wm := model.NewWorkingMemory()
	count := model.AggregatorFunc(func(facts []*model.Fact) interface{} {
		return len(facts)
	})
	moreThanOne := model.ValueTestFunc(func(v interface{}) bool {
		return v.(int) > 1
	})
	node := NewAccumulatorNode(NewAlphaNode("Txn", nil, ""), count, moreThanOne)

	assert.Empty(t, node.Evaluate(wm), "0 条不触发")

	insert(t, wm, map[string]interface{}{"type": "Txn", "name": "t1"})
	assert.Empty(t, node.Evaluate(wm), "1 条不触发")

	insert(t, wm, map[string]interface{}{"type": "Txn", "name": "t2"})
	matches := node.Evaluate(wm)
	require.Len(t, matches, 1)
	assert.Equal(t, [][]string{{"t1", "t2"}}, names(matches),
		"合成匹配携带完整事实列表")
	assert.Empty(t, matches[0].Bindings)
}

func TestNoFactNode(t *testing.T) {
	wm := model.NewWorkingMemory()
	matches := NewNoFactNode().Evaluate(wm)
	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].Facts)
	assert.NotNil(t, matches[0].Bindings)
}

func TestMergeConflict(t *testing.T) {
	wm := model.NewWorkingMemory()
	a := insert(t, wm, map[string]interface{}{"type": "A", "name": "a"})
	b := insert(t, wm, map[string]interface{}{"type": "A", "name": "b"})

	left := Match{Facts: []*model.Fact{a}, Bindings: model.Bindings{"x": a}}
	right := Match{Facts: []*model.Fact{b}, Bindings: model.Bindings{"x": b}}
	_, ok := merge(left, right)
	assert.False(t, ok, "同名变量绑定不同事实必须冲突")

	same := Match{Facts: []*model.Fact{a}, Bindings: model.Bindings{"x": a}}
	joined, ok := merge(left, same)
	require.True(t, ok)
	assert.Len(t, joined.Facts, 2)
	assert.Equal(t, a.ID, joined.Bindings["x"].ID)
}

package model

import "sync"

// WorkingMemory 按 Type 分桶存放当前存活的全部事实。
// 桶内保持插入顺序，保证匹配与查询的迭代是确定性的。
// 引擎约定单线程使用；锁只是为了动作回调中重入 Insert/Query 时的一致性。

type WorkingMemory struct {
	mu      sync.RWMutex
	buckets map[string][]*Fact
	index   map[string]*Fact // id -> fact
}

func NewWorkingMemory() *WorkingMemory {
	return &WorkingMemory{
		buckets: make(map[string][]*Fact),
		index:   make(map[string]*Fact),
	}
}

// Insert 校验并插入一条事实数据，返回包装后的 Fact。
func (m *WorkingMemory) Insert(data map[string]interface{}) (*Fact, error) {
	f, err := NewFact(data)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[f.Type] = append(m.buckets[f.Type], f)
	m.index[f.ID] = f
	return f, nil
}

// Retract 按 ID 删除事实，返回是否确实删除。
// 只影响后续的匹配阶段，已触发的激活不受影响。
func (m *WorkingMemory) Retract(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.index[id]
	if !ok {
		return false
	}
	delete(m.index, id)
	bucket := m.buckets[f.Type]
	for i, cur := range bucket {
		if cur.ID == id {
			m.buckets[f.Type] = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	return true
}

// OfType 返回指定类型事实的只读快照，按插入顺序。
func (m *WorkingMemory) OfType(factType string) []*Fact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket := m.buckets[factType]
	out := make([]*Fact, len(bucket))
	copy(out, bucket)
	return out
}

// Size 返回当前存活事实总数。
func (m *WorkingMemory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.index)
}

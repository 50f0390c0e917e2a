package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrMissingType 表示插入的数据缺少 "type" 判别字段。
var ErrMissingType = errors.New("fact 缺少非空的 type 字段")

// Fact 是工作内存中的一条事实记录。
// ID 由引擎分配，全局唯一且不复用；Type 是匹配网络分桶用的判别标签；
// Payload 是任意键值数据，引擎只读不写。

type Fact struct {
	ID      string
	Type    string
	Payload map[string]interface{}
}

// NewFact 校验并包装一条事实数据。
// data 必须携带非空字符串 "type" 字段，否则返回 ErrMissingType。
func NewFact(data map[string]interface{}) (*Fact, error) {
	t, _ := data["type"].(string)
	if t == "" {
		return nil, fmt.Errorf("%w: %v", ErrMissingType, data)
	}
	payload := make(map[string]interface{}, len(data))
	for k, v := range data {
		payload[k] = v
	}
	return &Fact{
		ID:      uuid.NewString(),
		Type:    t,
		Payload: payload,
	}, nil
}

// Field 返回 payload 中的字段值，不存在时返回 nil。
func (f *Fact) Field(name string) interface{} {
	if f == nil || f.Payload == nil {
		return nil
	}
	return f.Payload[name]
}

// Float 以 float64 读取字段，支持常见数值类型的宽化转换。
func (f *Fact) Float(name string) (float64, bool) {
	v := f.Field(name)
	if v == nil {
		return 0, false
	}
	return toFloat64(v)
}

// Str 以 string 读取字段。
func (f *Fact) Str(name string) (string, bool) {
	s, ok := f.Field(name).(string)
	return s, ok
}

func (f *Fact) String() string {
	id := f.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s(%s)", f.Type, id)
}

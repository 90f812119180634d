package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// UtilityField 是打分结果在序列化记录中的字段名。
const UtilityField = "utility"

// Candidate 是打分链路中的统一承载结构：原始记录、效用分数、标签。
//
// Fields 保存调用方传入的原始记录，可以包含特征 key 之外的字段（如 name），
// 特征 key 也可能缺失或为 null。Utility 由 rank.UtilityNode 写入。
type Candidate struct {
	Fields  map[string]any
	Utility float64
	Labels  map[string]Label
}

func NewCandidate(fields map[string]any) *Candidate {
	if fields == nil {
		fields = make(map[string]any)
	}
	return &Candidate{
		Fields: fields,
		Labels: make(map[string]Label),
	}
}

// Name 返回展示用名称（name 字段），不存在时返回空串。
func (c *Candidate) Name() string {
	if s, ok := c.Fields["name"].(string); ok {
		return s
	}
	return ""
}

// PutLabel 写入 Label；若已存在同名 key，则按 MergeLabel 规则累积。
func (c *Candidate) PutLabel(key string, lbl Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

// Record 返回原始记录加上 utility 字段的浅拷贝；原始记录中的同名字段会被覆盖。
func (c *Candidate) Record() map[string]any {
	out := make(map[string]any, len(c.Fields)+1)
	for k, v := range c.Fields {
		out[k] = v
	}
	out[UtilityField] = c.Utility
	return out
}

func (c *Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Record())
}

// ParseCandidates 将 JSON 数组解析为候选列表。数字以 json.Number 保留原始精度。
// 非法 JSON、非数组、数组元素不是对象时返回 MalformedCandidateInput。
func ParseCandidates(data []byte) ([]*Candidate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, MalformedCandidateInput(err)
	}
	if dec.More() {
		return nil, MalformedCandidateInput(errors.New("trailing data after candidate array"))
	}
	if raw == nil {
		return nil, MalformedCandidateInput(errors.New("candidates must be a JSON array"))
	}

	out := make([]*Candidate, 0, len(raw))
	for i, elem := range raw {
		fields, err := decodeObject(elem)
		if err != nil {
			return nil, MalformedCandidateInput(fmt.Errorf("candidate %d: %w", i, err))
		}
		out = append(out, NewCandidate(fields))
	}
	return out, nil
}

// CandidatesFromAny 将已解码的 JSON 值（如工具协议参数）转为候选列表。
func CandidatesFromAny(v any) ([]*Candidate, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, MalformedCandidateInput(fmt.Errorf("candidates must be an array, got %T", v))
	}
	out := make([]*Candidate, 0, len(list))
	for i, elem := range list {
		fields, ok := elem.(map[string]any)
		if !ok || fields == nil {
			return nil, MalformedCandidateInput(fmt.Errorf("candidate %d must be an object, got %T", i, elem))
		}
		out = append(out, NewCandidate(fields))
	}
	return out, nil
}

func decodeObject(data json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("candidate must be an object")
	}
	return fields, nil
}

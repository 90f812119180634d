package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型，调用方通过 IsXXX 判断错误种类
//   - Key 记录与错误相关的特征/系数名（如 InvalidFeatureValue("price")）
//   - Err 保留底层原因（如 Redis 连接错误、JSON 解析错误），可通过 errors.Unwrap 获取
//
// 错误种类：
//   - STORE_UNAVAILABLE：存储传输/认证失败（含超时）
//   - MALFORMED_COEFFICIENTS：存储中的系数不是合法 JSON
//   - INVALID_FEATURE_VALUE：候选特征值无法转为数值
//   - MISSING_COEFFICIENT：系数向量缺少必需的 key
//   - EMPTY_CANDIDATE_LIST：排序时候选列表为空
//   - MALFORMED_CANDIDATE_INPUT：候选集合本身不是合法的结构化数据
type DomainError struct {
	Code    string // 错误代码（如 "STORE_UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "feature", "model"）
	Key     string // 相关的特征或系数名，可为空
	Err     error  // 底层原因，可为空
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is 按 Module + Code 比较，使 errors.Is(err, ErrStoreNotFound) 对带原因的副本同样成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound                = "NOT_FOUND"
	ErrorCodeStoreUnavailable        = "STORE_UNAVAILABLE"
	ErrorCodeMalformedCoefficients   = "MALFORMED_COEFFICIENTS"
	ErrorCodeInvalidFeatureValue     = "INVALID_FEATURE_VALUE"
	ErrorCodeMissingCoefficient      = "MISSING_COEFFICIENT"
	ErrorCodeEmptyCandidateList      = "EMPTY_CANDIDATE_LIST"
	ErrorCodeMalformedCandidateInput = "MALFORMED_CANDIDATE_INPUT"
)

// 模块名称常量
const (
	ModuleStore   = "store"   // 存储模块
	ModuleFeature = "feature" // 特征缩放
	ModuleModel   = "model"   // 系数解析与打分
	ModuleRank    = "rank"    // 排序
)

// StoreUnavailable 包装存储层的传输/认证/超时错误。
func StoreUnavailable(key string, cause error) *DomainError {
	return &DomainError{
		Module:  ModuleStore,
		Code:    ErrorCodeStoreUnavailable,
		Message: fmt.Sprintf("store: lookup %q failed", key),
		Key:     key,
		Err:     cause,
	}
}

// MalformedCoefficients 表示存储中的值无法解析为系数。
func MalformedCoefficients(key string, cause error) *DomainError {
	return &DomainError{
		Module:  ModuleModel,
		Code:    ErrorCodeMalformedCoefficients,
		Message: fmt.Sprintf("model: malformed coefficients at %q", key),
		Key:     key,
		Err:     cause,
	}
}

// InvalidFeatureValue 表示特征值无法转为有限实数。
func InvalidFeatureValue(key string, value any) *DomainError {
	return &DomainError{
		Module:  ModuleFeature,
		Code:    ErrorCodeInvalidFeatureValue,
		Message: fmt.Sprintf("feature: invalid value %v (%T) for %q", value, value, key),
		Key:     key,
	}
}

// MissingCoefficient 表示系数向量缺少必需的 key。
func MissingCoefficient(key string) *DomainError {
	return &DomainError{
		Module:  ModuleModel,
		Code:    ErrorCodeMissingCoefficient,
		Message: fmt.Sprintf("model: missing coefficient %q", key),
		Key:     key,
	}
}

// ErrEmptyCandidateList 表示排序时没有任何候选。
var ErrEmptyCandidateList = NewDomainError(ModuleRank, ErrorCodeEmptyCandidateList, "rank: empty candidate list")

// MalformedCandidateInput 表示候选集合本身不合法。
func MalformedCandidateInput(cause error) *DomainError {
	return &DomainError{
		Module:  ModuleRank,
		Code:    ErrorCodeMalformedCandidateInput,
		Message: "rank: malformed candidate input",
		Err:     cause,
	}
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsStoreUnavailable 检查错误是否为 STORE_UNAVAILABLE
func IsStoreUnavailable(err error) bool { return hasCode(err, ErrorCodeStoreUnavailable) }

// IsMalformedCoefficients 检查错误是否为 MALFORMED_COEFFICIENTS
func IsMalformedCoefficients(err error) bool { return hasCode(err, ErrorCodeMalformedCoefficients) }

// IsInvalidFeatureValue 检查错误是否为 INVALID_FEATURE_VALUE
func IsInvalidFeatureValue(err error) bool { return hasCode(err, ErrorCodeInvalidFeatureValue) }

// IsMissingCoefficient 检查错误是否为 MISSING_COEFFICIENT
func IsMissingCoefficient(err error) bool { return hasCode(err, ErrorCodeMissingCoefficient) }

// IsEmptyCandidateList 检查错误是否为 EMPTY_CANDIDATE_LIST
func IsEmptyCandidateList(err error) bool { return hasCode(err, ErrorCodeEmptyCandidateList) }

// IsMalformedCandidateInput 检查错误是否为 MALFORMED_CANDIDATE_INPUT
func IsMalformedCandidateInput(err error) bool {
	return hasCode(err, ErrorCodeMalformedCandidateInput)
}

package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/logging"
	"github.com/rushteam/evrank/metrics"
)

// DefaultKeyPrefix 是系数在 KV 存储中的 key 前缀，完整 key 为 "params:" + userID。
const DefaultKeyPrefix = "params:"

// coeffsField 是存储值（JSON 对象）中承载系数映射的字段。
const coeffsField = "coeffs"

// CoefficientStore 将用户 ID 解析为系数向量。
//
// 回退规则：
//   - key 不存在：返回完整的默认系数（SourceDefault），这不是错误
//   - 值存在但不是合法 JSON 对象：返回 MalformedCoefficients，不会静默回退
//   - JSON 合法但没有 coeffs 字段：返回完整的默认系数，信封中的其它字段被忽略
//   - coeffs 字段存在：按原样返回（SourceResolved），校验留给打分阶段
//   - 存储调用失败（传输/认证/超时）：返回 StoreUnavailable
//
// 不做缓存：每次调用都会重新查询存储。
type CoefficientStore struct {
	store     core.Store
	keyPrefix string
	logger    *log.Logger
	metrics   *metrics.Metrics
}

// CoefficientStoreOption 系数存储配置选项
type CoefficientStoreOption func(*CoefficientStore)

// WithKeyPrefix 设置 key 前缀（默认 "params:"）
func WithKeyPrefix(prefix string) CoefficientStoreOption {
	return func(s *CoefficientStore) {
		s.keyPrefix = prefix
	}
}

// WithLogger 设置 logger
func WithLogger(l *log.Logger) CoefficientStoreOption {
	return func(s *CoefficientStore) {
		s.logger = logging.OrDiscard(l)
	}
}

// WithMetrics 设置监控指标
func WithMetrics(m *metrics.Metrics) CoefficientStoreOption {
	return func(s *CoefficientStore) {
		s.metrics = m
	}
}

// NewCoefficientStore 创建系数存储；store 通过构造注入，便于测试时替换为 MemoryStore。
func NewCoefficientStore(store core.Store, opts ...CoefficientStoreOption) *CoefficientStore {
	s := &CoefficientStore{
		store:     store,
		keyPrefix: DefaultKeyPrefix,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key 返回 userID 对应的存储 key。
func (s *CoefficientStore) Key(userID string) string {
	return s.keyPrefix + userID
}

// Resolve 查询 userID 的系数。
func (s *CoefficientStore) Resolve(ctx context.Context, userID string) (Coefficients, Source, error) {
	key := s.Key(userID)

	start := time.Now()
	data, err := s.store.Get(ctx, key)
	s.metrics.ObserveStoreGet(s.store.Name(), time.Since(start))

	if err != nil {
		if core.IsStoreNotFound(err) {
			s.logger.Debug("coefficients not found, using defaults", "user_id", userID, "key", key)
			s.metrics.ObserveResolution(string(SourceDefault))
			return DefaultCoefficients(), SourceDefault, nil
		}
		s.logger.Warn("coefficient lookup failed", "user_id", userID, "backend", s.store.Name(), "err", err)
		s.metrics.ObserveResolutionError(core.ErrorCodeStoreUnavailable)
		return nil, "", core.StoreUnavailable(key, err)
	}

	coeffs, found, err := decodeEnvelope(data)
	if err != nil {
		s.logger.Warn("malformed coefficients", "user_id", userID, "key", key, "err", err)
		s.metrics.ObserveResolutionError(core.ErrorCodeMalformedCoefficients)
		return nil, "", core.MalformedCoefficients(key, err)
	}
	if !found {
		s.logger.Debug("stored entry has no coefficients, using defaults", "user_id", userID)
		s.metrics.ObserveResolution(string(SourceDefault))
		return DefaultCoefficients(), SourceDefault, nil
	}

	s.metrics.ObserveResolution(string(SourceResolved))
	return coeffs, SourceResolved, nil
}

// decodeEnvelope 分两步解析：先判断值是否为 JSON 对象，再判断对象中是否有 coeffs 字段。
// found=false 表示对象合法但没有 coeffs 字段。coeffs 为 null 视为存在但为空。
func decodeEnvelope(data []byte) (Coefficients, bool, error) {
	if !utf8.Valid(data) {
		return nil, false, errors.New("value is not valid UTF-8")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, false, err
	}
	if envelope == nil {
		return nil, false, errors.New("value is not a JSON object")
	}

	raw, ok := envelope[coeffsField]
	if !ok {
		return nil, false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Coefficients{}, true, nil
	}

	var coeffs Coefficients
	if err := json.Unmarshal(raw, &coeffs); err != nil {
		return nil, false, err
	}
	return coeffs, true, nil
}

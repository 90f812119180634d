package core

import "context"

// Store 是系数存储的领域接口（只读）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 只暴露读取：系数由训练系统写入，本库从不回写
//   - 不假设一致性：不要求 read-after-write
//
// 实现：
//   - store.RedisStore（生产，兼容 Upstash 的 rediss:// 地址）
//   - store.MemoryStore（测试/开发）
type Store interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Get 读取单个 key 的值；key 不存在时返回 ErrStoreNotFound。
	// 实现方负责自己的超时，其它错误由调用方转换为 StoreUnavailable。
	Get(ctx context.Context, key string) ([]byte, error)

	// Close 关闭连接/释放资源
	Close() error
}

// ErrStoreNotFound 表示 key 不存在
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

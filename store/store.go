// Package store 提供 core.Store 的实现；接口定义在 core 包。
//
//	var s core.Store = store.NewMemoryStore()
//	s, err := store.NewRedisStoreFromURL(ctx, "rediss://default:<token>@<host>:6379", store.RedisOptions{})
package store

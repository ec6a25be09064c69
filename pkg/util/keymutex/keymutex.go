// Package keymutex 提供按 key 分片的互斥锁
// 同一聊天的写操作（发消息、已读、拉黑）必须串行化，
// 不同聊天之间完全并行，不存在全局锁
package keymutex

import (
	"hash/fnv"
	"sync"
)

// KeyMutex 按 key 哈希到固定数量的分片锁
// 分片数固定，锁表不随 key 数量增长
type KeyMutex struct {
	shards []sync.Mutex
}

// New 创建分片锁，shards 必须为正数
func New(shards int) *KeyMutex {
	if shards <= 0 {
		shards = 64
	}
	return &KeyMutex{shards: make([]sync.Mutex, shards)}
}

// Lock 锁定 key 对应的分片
func (m *KeyMutex) Lock(key string) {
	m.shards[m.index(key)].Lock()
}

// Unlock 解锁 key 对应的分片
func (m *KeyMutex) Unlock(key string) {
	m.shards[m.index(key)].Unlock()
}

func (m *KeyMutex) index(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(m.shards)))
}

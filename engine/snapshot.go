package engine

import (
	"sync/atomic"

	"github.com/rushteam/personakit/strategy"
)

// atomicSnapshot 持有当前窗口快照。快照本身只读，替换是原子指针交换，
// 读路径无锁。
type atomicSnapshot struct {
	p atomic.Pointer[strategy.Snapshot]
}

func (a *atomicSnapshot) load() *strategy.Snapshot { return a.p.Load() }

func (a *atomicSnapshot) store(s *strategy.Snapshot) { a.p.Store(s) }

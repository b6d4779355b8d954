package engine

import "sync"

// Tentative 保存已提交的值；新值只有在持久化成功后才会生效，失败则丢弃
type Tentative[T any] struct {
	mu        sync.RWMutex
	committed T
}

func NewTentative[T any](initial T) *Tentative[T] {
	return &Tentative[T]{committed: initial}
}

func (t *Tentative[T]) Value() T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.committed
}

// Apply 先持久化 next，成功后提交；persist 返回错误时保留旧值并原样返回错误
func (t *Tentative[T]) Apply(next T, persist func(T) error) error {
	if err := persist(next); err != nil {
		return err
	}
	t.mu.Lock()
	t.committed = next
	t.mu.Unlock()
	return nil
}

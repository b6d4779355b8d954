// Package realtime 通知实时推送的客户端：订阅 websocket 并合并到本地收件箱
package realtime

import (
	"sync"

	"corp_edu_backend/internal/model"
)

// Inbox 本地通知列表，新的在前，同一 id 只出现一次
type Inbox struct {
	mu    sync.RWMutex
	items []model.Notification
	seen  map[string]struct{}
}

func NewInbox(initial []model.Notification) *Inbox {
	in := &Inbox{seen: make(map[string]struct{}, len(initial))}
	for _, n := range initial {
		if _, ok := in.seen[n.ID]; ok {
			continue
		}
		in.seen[n.ID] = struct{}{}
		in.items = append(in.items, n)
	}
	return in
}

// Merge 把推送来的通知放到最前面；已存在的 id 忽略，返回是否新增
func (in *Inbox) Merge(n model.Notification) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.seen[n.ID]; ok {
		return false
	}
	in.seen[n.ID] = struct{}{}
	in.items = append([]model.Notification{n}, in.items...)
	return true
}

// Remove 处理删除事件
func (in *Inbox) Remove(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.seen[id]; !ok {
		return false
	}
	delete(in.seen, id)
	for i, n := range in.items {
		if n.ID == id {
			in.items = append(in.items[:i:i], in.items[i+1:]...)
			break
		}
	}
	return true
}

func (in *Inbox) Items() []model.Notification {
	in.mu.RLock()
	defer in.mu.RUnlock()
	out := make([]model.Notification, len(in.items))
	copy(out, in.items)
	return out
}

func (in *Inbox) Unread() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	n := 0
	for _, item := range in.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkAllRead 与服务端 List 的行为保持一致
func (in *Inbox) MarkAllRead() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		in.items[i].Read = true
	}
}

package realtime

import "sync"

// 事件动作，对应数据表行的变更类型
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// 事件来源的数据表
const (
	TableTasks         = "tasks"
	TableNotifications = "notifications"
	TableMemoryItems   = "memory_items"
	TableMemorySection = "memory_sections"
)

// Event 描述一次面向单个用户的行级变更
type Event struct {
	Table   string      `json:"table"`
	Action  string      `json:"action"`
	ID      uint        `json:"id"`
	Payload interface{} `json:"payload,omitempty"`
}

const subscriptionBuffer = 16

// Subscription 表示一次已登记的事件订阅，使用完毕必须 Close。
type Subscription struct {
	C chan Event

	hub    *Hub
	userID uint
	once   sync.Once
}

// Close 注销订阅。最后一个订阅关闭后用户条目随之释放。
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.unsubscribe(s)
	})
}

// Hub 按用户维护事件订阅，订阅以显式获取/释放的方式管理，
// 避免模块级单例通道带来的重复订阅问题。
type Hub struct {
	mu    sync.Mutex
	users map[uint]map[*Subscription]struct{}
}

// NewHub 构造空的 Hub。
func NewHub() *Hub {
	return &Hub{users: make(map[uint]map[*Subscription]struct{})}
}

// Subscribe 为用户登记一个订阅，返回带缓冲的事件通道。
func (h *Hub) Subscribe(userID uint) *Subscription {
	sub := &Subscription{
		C:      make(chan Event, subscriptionBuffer),
		hub:    h,
		userID: userID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.users[userID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.users[userID] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.users[sub.userID]
	if !ok {
		return
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.users, sub.userID)
	}
	close(sub.C)
}

// Publish 将事件投递给该用户的全部订阅。
// 投递不会阻塞：缓冲已满的慢订阅者会丢事件，客户端靠重新拉取对齐。
func (h *Hub) Publish(userID uint, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.users[userID] {
		select {
		case sub.C <- ev:
		default:
		}
	}
}

// SubscriberCount 返回该用户当前的订阅数。
func (h *Hub) SubscriberCount(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users[userID])
}

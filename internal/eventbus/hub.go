package eventbus

import (
	"context"
	"sync"
	"time"
)

// 事件类型
const (
	TypeNewRun       = "run.new"
	TypeScanFinished = "scan.finished"
)

type Event struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Hub 进程内事件总线。
// 摄取核心只负责向外发布；广播给已连接客户端等传输层职责由订阅方承担。
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp == 0 {
		evt.Timestamp = time.Now().UnixMilli()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// 慢消费者直接丢弃，避免阻塞摄取链路
		}
	}
}

// PublishNewRun 发布"新成绩入库"事件
func (h *Hub) PublishNewRun(taskName string, runID int64, hash string) {
	h.Publish(Event{
		Type: TypeNewRun,
		Data: map[string]any{
			"task_name": taskName,
			"run_id":    runID,
			"hash":      hash,
		},
	})
}

func (h *Hub) Subscribe(ctx context.Context, buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

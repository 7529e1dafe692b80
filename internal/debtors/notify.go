package debtors

import (
	"sync"
	"time"

	"github.com/mmeshcher/debtdesk/internal/model"
)

// ToastDelay задаёт время показа уведомления.
const ToastDelay = 4 * time.Second

// notifier держит единственный слот уведомления и очищает его по таймеру.
// Новое уведомление заменяет текущее и перезапускает таймер.
type notifier struct {
	mu      sync.Mutex
	delay   time.Duration
	current *model.Toast
	timer   *time.Timer
	gen     uint64
}

func (n *notifier) show(kind model.ToastKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.current = &model.Toast{Kind: kind, Message: message}
	if n.timer != nil {
		n.timer.Stop()
	}

	n.gen++
	gen := n.gen
	n.timer = time.AfterFunc(n.delay, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// таймер мог сработать уже после замены уведомления
		if n.gen == gen {
			n.current = nil
		}
	})
}

func (n *notifier) toast() *model.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.current == nil {
		return nil
	}
	t := *n.current
	return &t
}

func (n *notifier) stop() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
}

// clear убирает текущее уведомление вместе с таймером.
func (n *notifier) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.current = nil
}

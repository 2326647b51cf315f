package cart

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ChangeType tags a cart change notification
type ChangeType string

const (
	ChangeItemAdded       ChangeType = "ItemAdded"
	ChangeItemRemoved     ChangeType = "ItemRemoved"
	ChangeQuantityChanged ChangeType = "QuantityChanged"
	ChangeCartCleared     ChangeType = "CartCleared"
)

// ChangeEvent describes a committed cart mutation. Item is nil for CartCleared.
type ChangeEvent struct {
	Type       ChangeType `json:"type"`
	Item       *CartItem  `json:"item,omitempty"`
	Message    string     `json:"message"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Observer receives cart change notifications
type Observer func(ChangeEvent)

type subscription struct {
	id       uint64
	observer Observer
}

// Notifier fans change events out to the observers registered at delivery time.
// Delivery is synchronous and in subscription order. Concurrent Notify calls are
// not ordered against each other; Service serialises them in commit order.
type Notifier struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger logrus.FieldLogger
}

// NewNotifier creates an empty notifier
func NewNotifier(logger logrus.FieldLogger) *Notifier {
	return &Notifier{logger: logger}
}

// Subscribe registers an observer and returns the function that removes it.
// Calling the returned function more than once is a no-op.
func (n *Notifier) Subscribe(observer Observer) func() {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, observer: observer})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.unsubscribe(id) })
	}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Notify delivers the event to every observer. A panicking observer is logged
// and skipped; the remaining observers still receive the event.
func (n *Notifier) Notify(event ChangeEvent) {
	n.mu.RLock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.RUnlock()

	for _, s := range subs {
		n.deliver(s, event)
	}
}

func (n *Notifier) deliver(s subscription, event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil && n.logger != nil {
			n.logger.WithFields(logrus.Fields{
				"observer_id": s.id,
				"change_type": event.Type,
				"panic":       r,
			}).Error("Cart observer panicked")
		}
	}()

	if event.Item != nil {
		item := *event.Item
		event.Item = &item
	}
	s.observer(event)
}

package services

import "sync"

// Notifier fans out "tasks changed" signals per user.
//
// Publish never blocks: each subscription holds at most one pending signal, so a burst of
// changes collapses into a single wake-up for a slow subscriber.
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
}

// NewNotifier creates an empty notifier
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers for the user's change signals. Call the returned function to unsubscribe.
func (n *Notifier) Subscribe(userID string) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	ch := make(chan struct{}, 1)
	if n.subs[userID] == nil {
		n.subs[userID] = make(map[int]chan struct{})
	}
	n.subs[userID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs[userID], id)
			if len(n.subs[userID]) == 0 {
				delete(n.subs, userID)
			}
		})
	}
}

// Publish signals every subscriber of the user
func (n *Notifier) Publish(userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns how many subscriptions the user has
func (n *Notifier) Subscribers(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs[userID])
}

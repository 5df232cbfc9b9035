// Package stream delivers PanelData snapshots to subscribers in arrival order.
package stream

import (
	"sync"

	"github.com/oakwood-commons/paneledit/pkg/data"
)

// Handler receives each snapshot.
type Handler func(*data.PanelData)

// Subscription ends delivery to one handler.
type Subscription interface {
	Unsubscribe()
}

// Source is anything snapshots can be subscribed to.
type Source interface {
	Subscribe(h Handler) Subscription
}

// Subject is an in-memory Source. Publish delivers synchronously, in
// subscription order, and new subscribers immediately receive the last
// snapshot if there is one.
type Subject struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]Handler
	order    []int
	last     *data.PanelData
}

// NewSubject creates an empty Subject.
func NewSubject() *Subject {
	return &Subject{handlers: map[int]Handler{}}
}

type subscription struct {
	once sync.Once
	s    *Subject
	id   int
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.s.mu.Lock()
		defer s.s.mu.Unlock()
		delete(s.s.handlers, s.id)
		for i, id := range s.s.order {
			if id == s.id {
				s.s.order = append(s.s.order[:i:i], s.s.order[i+1:]...)
				break
			}
		}
	})
}

// Subscribe implements Source.
func (s *Subject) Subscribe(h Handler) Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = h
	s.order = append(s.order, id)
	last := s.last
	s.mu.Unlock()

	if last != nil {
		h(last)
	}
	return &subscription{s: s, id: id}
}

// Publish replaces the current snapshot and delivers it.
func (s *Subject) Publish(d *data.PanelData) {
	s.mu.Lock()
	s.last = d
	handlers := make([]Handler, 0, len(s.order))
	for _, id := range s.order {
		handlers = append(handlers, s.handlers[id])
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(d)
	}
}

// Last returns the most recent snapshot, or nil.
func (s *Subject) Last() *data.PanelData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

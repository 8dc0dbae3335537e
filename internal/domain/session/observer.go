package session

import "github.com/GriffinCanCode/AgentOS/media/internal/shared/types"

// Observer receives renderer events once the session has applied them
type Observer interface {
	HandleMediaEvent(s *Session, ev types.Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(s *Session, ev types.Event)

// HandleMediaEvent calls f(s, ev)
func (f ObserverFunc) HandleMediaEvent(s *Session, ev types.Event) {
	f(s, ev)
}

type observerEntry struct {
	id       int
	observer Observer
}

// AddObserver registers o and returns a function that unregisters it
func (s *Session) AddObserver(o Observer) (remove func()) {
	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, observerEntry{id: id, observer: o})
	return func() {
		for i, e := range s.observers {
			if e.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emit(ev types.Event) {
	if !s.passesThrough(ev) {
		return
	}
	for _, e := range append([]observerEntry(nil), s.observers...) {
		e.observer.HandleMediaEvent(s, ev)
	}
}

// passesThrough drops window requests addressed to another instance
func (s *Session) passesThrough(ev types.Event) bool {
	var target string
	switch e := ev.(type) {
	case types.CloseRequest:
		target = e.Target
	case types.GeometryChange:
		target = e.Target
	default:
		return true
	}
	return target == "" || target == s.name
}

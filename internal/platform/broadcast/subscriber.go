package broadcast

import "sync"

// ChannelSubscriber buffers messages for one stream connection.
type ChannelSubscriber struct {
	mu     sync.Mutex
	ch     chan Message
	closed bool
}

func NewChannelSubscriber(buffer int) *ChannelSubscriber {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSubscriber{ch: make(chan Message, buffer)}
}

func (s *ChannelSubscriber) Deliver(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSubscriberClosed
	}
	select {
	case s.ch <- msg:
		return nil
	default:
		return ErrSubscriberFull
	}
}

// Messages is closed once the subscriber is closed.
func (s *ChannelSubscriber) Messages() <-chan Message {
	return s.ch
}

func (s *ChannelSubscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}

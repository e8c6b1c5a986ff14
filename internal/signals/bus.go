package signals

import "github.com/google/uuid"

// #region bus
// Bus is a synchronous publish-only channel: a registry of callback handles
// plus an append-only emission history. No event loop; subscribers run
// inline, in subscription order.
type Bus struct {
	subscribers []subscription
	history     []Signal
}

type subscription struct {
	token    string
	callback func(Signal)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// #endregion bus

// #region subscribe
// Subscribe registers a callback and returns its handle token. The same
// callback may be registered more than once.
func (b *Bus) Subscribe(fn func(Signal)) string {
	token := uuid.New().String()
	b.subscribers = append(b.subscribers, subscription{token: token, callback: fn})
	return token
}

// Unsubscribe removes the subscription for token. No-op if absent.
func (b *Bus) Unsubscribe(token string) {
	for i, sub := range b.subscribers {
		if sub.token == token {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			return
		}
	}
}

// #endregion subscribe

// #region emit
// Emit appends sig to the history, then invokes every current subscriber.
// Panics from subscribers are not recovered: a panicking subscriber aborts
// the remaining fan-out and propagates to the emitting caller.
func (b *Bus) Emit(sig Signal) {
	b.history = append(b.history, sig)
	for _, sub := range b.subscribers {
		sub.callback(sig)
	}
}

// #endregion emit

// #region history
// History returns a copy of all emitted signals in emission order.
func (b *Bus) History() []Signal {
	out := make([]Signal, len(b.history))
	copy(out, b.history)
	return out
}

// #endregion history

package event

import "sync"

// Stats holds bus counters.
type Stats struct {
	Published     uint64
	Delivered     uint64
	Deferred      uint64
	DrainedCalls  uint64
	Subscriptions int
}

// Bus dispatches events to subscribers and queues deferred calls.
//
// Dispatch is synchronous: Publish invokes every current subscriber for the
// event type in registration order and returns their results to the caller.
// Handler errors and panics are not caught; propagation is the publisher's
// responsibility.
//
// The mutex only guards registration state so that background goroutines
// (such as the settings watcher) may enqueue deferred calls. Handlers always
// run on the goroutine that calls Publish or DrainDeferred, which in the
// running application is the frame goroutine.
type Bus struct {
	mu       sync.Mutex
	subs     map[Type][]*Subscription
	deferred []func()

	published    uint64
	delivered    uint64
	deferCount   uint64
	drainedCalls uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Type][]*Subscription)}
}

// Subscribe registers a handler for an event type under the given owner
// token. Handlers for the same type fire in registration order.
func (b *Bus) Subscribe(t Type, owner Owner, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscription(t, owner, h)
	b.subs[t] = append(b.subs[t], sub)
	return sub
}

// Unsubscribe removes every subscription the owner holds for the event type.
// Removing an unknown owner or type is a no-op. Subscriptions removed while
// a dispatch for the same type is in flight do not fire again in that pass.
func (b *Bus) Unsubscribe(t Type, owner Owner) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[t]
	kept := subs[:0]
	for _, sub := range subs {
		if sub.owner == owner {
			sub.cancelled = true
			continue
		}
		kept = append(kept, sub)
	}
	if len(kept) == 0 {
		delete(b.subs, t)
	} else {
		b.subs[t] = kept
	}
}

// UnsubscribeAll removes every subscription the owner holds, across all
// event types.
func (b *Bus) UnsubscribeAll(owner Owner) {
	b.mu.Lock()
	types := make([]Type, 0, len(b.subs))
	for t := range b.subs {
		types = append(types, t)
	}
	b.mu.Unlock()

	for _, t := range types {
		b.Unsubscribe(t, owner)
	}
}

// Publish delivers the payload to every current subscriber for the type, in
// registration order, and returns their results. Publishing a type with no
// subscribers is a silent no-op returning nil.
func (b *Bus) Publish(t Type, payload any) []any {
	b.mu.Lock()
	b.published++
	subs := b.subs[t]
	snapshot := make([]*Subscription, len(subs))
	copy(snapshot, subs)
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return nil
	}

	results := make([]any, 0, len(snapshot))
	for _, sub := range snapshot {
		// Re-check liveness per handler: a handler earlier in this pass may
		// have unsubscribed a later one.
		b.mu.Lock()
		live := !sub.cancelled
		if live {
			b.delivered++
		}
		b.mu.Unlock()
		if !live {
			continue
		}
		results = append(results, sub.handler(payload))
	}
	return results
}

// Defer enqueues a call for the next drain.
func (b *Bus) Defer(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deferred = append(b.deferred, fn)
	b.deferCount++
}

// DrainDeferred runs every queued call in FIFO order and returns how many
// ran. Calls deferred during the drain land in the following drain, which
// bounds the work done per frame.
func (b *Bus) DrainDeferred() int {
	b.mu.Lock()
	queue := b.deferred
	b.deferred = nil
	b.mu.Unlock()

	for _, fn := range queue {
		fn()
	}

	b.mu.Lock()
	b.drainedCalls += uint64(len(queue))
	b.mu.Unlock()
	return len(queue)
}

// Close drops all subscriptions and pending deferred calls.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t, subs := range b.subs {
		for _, sub := range subs {
			sub.cancelled = true
		}
		delete(b.subs, t)
	}
	b.deferred = nil
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, subs := range b.subs {
		n += len(subs)
	}
	return Stats{
		Published:     b.published,
		Delivered:     b.delivered,
		Deferred:      b.deferCount,
		DrainedCalls:  b.drainedCalls,
		Subscriptions: n,
	}
}

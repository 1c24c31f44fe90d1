package event

import "github.com/google/uuid"

// Subscription is a single (event, owner, handler) registration.
// A cancelled subscription is skipped by any dispatch still in flight, so
// unsubscribing from inside a handler of the same event is safe.
type Subscription struct {
	id        string
	eventType Type
	owner     Owner
	handler   Handler
	cancelled bool
}

func newSubscription(t Type, owner Owner, h Handler) *Subscription {
	return &Subscription{
		id:        uuid.NewString(),
		eventType: t,
		owner:     owner,
		handler:   h,
	}
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Type returns the subscribed event type.
func (s *Subscription) Type() Type { return s.eventType }

// Owner returns the owner token the subscription was registered under.
func (s *Subscription) Owner() Owner { return s.owner }

// Active reports whether the subscription can still receive events.
func (s *Subscription) Active() bool { return !s.cancelled }

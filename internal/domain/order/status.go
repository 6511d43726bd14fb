package order

import (
	"strings"

	"github.com/your-org/storefront/internal/pkg/apperr"
)

// Status is the lifecycle state of an order
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusConfirmed Status = "CONFIRMED"
	StatusPacked    Status = "PACKED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{
	StatusPlaced,
	StatusConfirmed,
	StatusPacked,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

// transitions is the complete set of legal moves. Anything absent is illegal.
var transitions = map[Status][]Status{
	StatusPlaced:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPacked, StatusCancelled},
	StatusPacked:    {StatusShipped},
	StatusShipped:   {StatusDelivered},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ParseStatus converts user input into a Status
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := transitions[candidate]; !ok {
		return "", apperr.New(apperr.ErrInvalidTransition, "unknown order status %q", s)
	}
	return candidate, nil
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an order may move from s to next
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s
func (s Status) NextStatuses() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Cancellable reports whether an order in this status may still be cancelled
func (s Status) Cancellable() bool {
	return s.CanTransition(StatusCancelled)
}

// Terminal reports whether no further transition is possible
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) String() string {
	return string(s)
}

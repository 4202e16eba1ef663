// Package pubsub delivers workspace, watcher and log events to the
// single-threaded consumers: the Bubble Tea update loop and the headless
// watch loop.
package pubsub

import "time"

// EventType names what happened. Each publisher declares its own.
type EventType string

// Event is one published notification.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

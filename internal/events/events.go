/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package events

// EventType enumerates event categories.
type EventType string

const (
	EventShiftRendered EventType = "shift.rendered"
	EventRunCompleted  EventType = "run.completed"
	EventRunFailed     EventType = "run.failed"
)

// Payload generic event payload.
type Payload map[string]any

// Publisher delivers events. Delivery is best effort; failures are logged by
// the implementation and never abort a run.
type Publisher interface {
	Publish(eventType EventType, payload Payload)
	Close() error
}

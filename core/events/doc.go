// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - TaskCreated: a task was registered and its requests are being sent
//   - TrackerCompleted: one recipient of a task reached a terminal state
//   - DoubleCompletion: a tracker received a second terminal outcome
package events

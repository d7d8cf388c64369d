package events

import "context"

// AssignmentCreated is emitted after a user is newly assigned to a task.
// It is never emitted for the unassign transition.
type AssignmentCreated struct {
	TaskID int64
	UserID int64
}

// Sink receives assignment notifications. Publish is fire-and-forget from the
// caller's point of view: the toggle that produced the event has already
// committed, and a failing sink must not undo or fail it.
type Sink interface {
	Publish(ctx context.Context, e AssignmentCreated) error
}

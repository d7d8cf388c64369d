package domain

// Assignment links a user to a task. At most one row exists per (TaskID, UserID);
// the store enforces that with a unique constraint.
type Assignment struct {
	ID     int64
	TaskID int64
	UserID int64
}

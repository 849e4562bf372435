package taskqueue

import "fmt"

// TaskPanicError captures a task or frame callback that panicked.
// It includes the stack trace for debugging.
type TaskPanicError struct {
	// Queue is "microtask" or "frame".
	Queue string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("%s task panicked: %v", e.Queue, e.Value)
}

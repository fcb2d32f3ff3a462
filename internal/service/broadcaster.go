package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	// BroadcastToForm pushes an event to every student currently on the form.
	BroadcastToForm(formID string, msgType string, payload interface{})
	// BroadcastToStudent pushes an event to one student's connections.
	BroadcastToStudent(formID, studentEmail string, msgType string, payload interface{})
}

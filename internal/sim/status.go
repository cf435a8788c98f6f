package sim

// SessionStatus represents the lifecycle state of a simulation session.
type SessionStatus string

const (
	StatusRunning SessionStatus = "RUNNING"
	StatusPaused  SessionStatus = "PAUSED"
	StatusStopped SessionStatus = "STOPPED"
)

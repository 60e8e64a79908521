package services

// State is the phase a BatchService run is in.
type State int

const (
	StateIdle State = iota
	StateDiscovering
	StateDeduplicating
	StateConnectionCheck
	StateLoading
	StateReporting
	StateDone

	// StateAborted is entered when discovery or the connection check fails.
	StateAborted
)

// String returns the phase name used in logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiscovering:
		return "discovering"
	case StateDeduplicating:
		return "deduplicating"
	case StateConnectionCheck:
		return "connection-check"
	case StateLoading:
		return "loading"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

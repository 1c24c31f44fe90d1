package plugin

// State represents the lifecycle state of a plugin module.
type State int

// Plugin states.
const (
	// StateUnloaded - module is not loaded, or has been released.
	StateUnloaded State = iota

	// StateLoaded - module code is loaded but its entrypoint has not run.
	StateLoaded

	// StateInitialized - the entrypoint ran successfully.
	StateInitialized

	// StateFailed - loading or the entrypoint failed; the module is
	// excluded from further dispatch.
	StateFailed
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

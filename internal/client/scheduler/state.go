package scheduler

// State is where a tracked resource sits in the scan cycle.
type State int

const (
	Idle State = iota
	Due
	Running
	Cooldown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Due:
		return "due"
	case Running:
		return "running"
	case Cooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Trigger says who asked for a scan.
type Trigger string

const (
	TriggerAuto   Trigger = "auto"
	TriggerManual Trigger = "manual"
)

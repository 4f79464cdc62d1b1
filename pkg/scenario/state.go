package scenario

// State is a step of a single scenario run.
type State int

const (
	StateSetup State = iota
	StateApplied
	StateWaiting
	StateIdentifying
	StateClassifying
	StateContextCollection
	StateDiagnosing
	StateDisplaying
	StateCleanup
	StateDone
)

var stateNames = [...]string{
	StateSetup:             "Setup",
	StateApplied:           "Applied",
	StateWaiting:           "Waiting",
	StateIdentifying:       "Identifying",
	StateClassifying:       "Classifying",
	StateContextCollection: "ContextCollection",
	StateDiagnosing:        "Diagnosing",
	StateDisplaying:        "Displaying",
	StateCleanup:           "Cleanup",
	StateDone:              "Done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

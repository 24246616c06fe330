// Package state enumerates the document phases a content-generation run
// passes through and the transition table that governs movement between
// them. It holds no document data — see pkg/document for the container
// that embeds a State and enforces the table below on every mutation.
package state

import "fmt"

// State is a phase in the content-generation pipeline.
type State string

const (
	Created          State = "CREATED"
	Researching      State = "RESEARCHING"
	Drafting         State = "DRAFTING"
	FactChecking     State = "FACT_CHECKING"
	Editing          State = "EDITING"
	Critiquing       State = "CRITIQUING"
	AwaitingApproval State = "AWAITING_APPROVAL"
	Published        State = "PUBLISHED"
	Rejected         State = "REJECTED"
)

// IsValid reports whether s is one of the declared states.
func (s State) IsValid() bool {
	switch s {
	case Created, Researching, Drafting, FactChecking, Editing, Critiquing,
		AwaitingApproval, Published, Rejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether a document in state s can no longer transition.
func (s State) IsTerminal() bool {
	return s == Published || s == Rejected
}

// IsProcessing reports whether s is an active, non-terminal, non-approval
// phase — i.e. one where an agent is expected to run next.
func (s State) IsProcessing() bool {
	return s.IsValid() && !s.IsTerminal() && s != AwaitingApproval
}

// transitions is the authoritative table from §4.1 of the specification.
// Every legal edge — happy path, skip edges, revision edges, and approval
// edges — must appear here; transitionTo consults nothing else.
var transitions = map[State][]State{
	Created:          {Researching, Rejected},
	Researching:      {Drafting, AwaitingApproval, Rejected},
	Drafting:         {FactChecking, Editing, AwaitingApproval, Rejected},
	FactChecking:     {Editing, Drafting, AwaitingApproval, Rejected},
	Editing:          {Critiquing, Published, FactChecking, Drafting, AwaitingApproval, Rejected},
	Critiquing:       {Published, Editing, AwaitingApproval, Rejected},
	AwaitingApproval: {Researching, Drafting, FactChecking, Editing, Critiquing, Published, Rejected},
	Published:        {},
	Rejected:         {},
}

// happyNext maps each processing state to the next state on the unconditional
// happy path, ignoring skip/revision/approval edges. AwaitingApproval and the
// terminal states have no happy-path successor.
var happyNext = map[State]State{
	Created:      Researching,
	Researching:  Drafting,
	Drafting:     FactChecking,
	FactChecking: Editing,
	Editing:      Critiquing,
	Critiquing:   Published,
}

// InvalidTransition reports an attempted move that is not in the transition
// table. It always signals a programming error — the executor and document
// are expected never to attempt one in normal operation.
type InvalidTransition struct {
	From State
	To   State
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

// CanTransition reports whether moving from `from` to `to` is legal.
func CanTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Validate returns an *InvalidTransition if the move is not legal, nil
// otherwise.
func Validate(from, to State) error {
	if !CanTransition(from, to) {
		return &InvalidTransition{From: from, To: to}
	}
	return nil
}

// NextInHappyFlow returns the next state on the unconditional happy path and
// true, or the zero State and false if s has no happy-path successor (i.e.
// s is AwaitingApproval or terminal).
func NextInHappyFlow(s State) (State, bool) {
	next, ok := happyNext[s]
	return next, ok
}

// PreviousForRevision returns the producing stage a revision edge from s
// should return to. Only FactChecking and Critiquing originate revision
// edges in the happy-path sense; callers pick the actual target based on
// the agent's recommendation (see pkg/pipeline).
func PreviousForRevision(s State) (State, bool) {
	switch s {
	case FactChecking:
		return Drafting, true
	case Critiquing:
		return Editing, true
	default:
		return "", false
	}
}

// AllStates returns every declared state: the processing states in
// happy-path order, then AwaitingApproval, then the two terminal states.
// Useful for config validation and test tables.
func AllStates() []State {
	return []State{
		Created, Researching, Drafting, FactChecking, Editing, Critiquing,
		AwaitingApproval, Published, Rejected,
	}
}

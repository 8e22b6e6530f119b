package domain

// transitionTable declares, per state, the set of states reachable by one
// legal transition. Edges are directional; from == to is never legal. The
// terminal states carry no outbound edges.
var transitionTable = map[Status][]Status{
	StatusNew:                {StatusWaiting},
	StatusWaiting:            {StatusReadyToSchedule, StatusWaitingForApproval, StatusWaitingForParts, StatusCanceled},
	StatusWaitingForApproval: {StatusReadyToSchedule, StatusCanceled},
	StatusWaitingForParts:    {StatusReadyToSchedule, StatusCanceled},
	StatusReadyToSchedule:    {StatusScheduled, StatusCanceled},
	StatusScheduled:          {StatusInProgress, StatusReadyToSchedule, StatusCanceled},
	StatusInProgress:         {StatusCompleted, StatusReadyToSchedule},
	StatusCompleted:          {},
	StatusCanceled:           {},
}

// LegalNextStates returns the states reachable from current by one legal
// transition. The returned slice is a copy; callers may not mutate the table.
func LegalNextStates(current Status) []Status {
	edges := transitionTable[current]
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}

// CanTransition reports whether from -> to is an edge of the transition table.
func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	for _, next := range transitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsSendBack reports whether from -> to is a send-back edge: a backward move
// returning an assigned request to the scheduling queue.
func IsSendBack(from, to Status) bool {
	if to != StatusReadyToSchedule {
		return false
	}
	return from == StatusScheduled || from == StatusInProgress
}

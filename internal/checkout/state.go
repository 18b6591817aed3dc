package checkout

import "sync"

// State is a step of the order-placement flow.
type State int

const (
	StateIdle State = iota
	StateOrderCreated
	// StateSubmitted is the terminal state of the no-payment path: the
	// order was recorded as a purchase order or self-pickup enquiry.
	StateSubmitted
	StateAwaitingPayment
	StateVerifying
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOrderCreated:
		return "order_created"
	case StateSubmitted:
		return "submitted"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateVerifying:
		return "verifying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the flow has settled.
func (s State) Terminal() bool {
	switch s {
	case StateSubmitted, StateSucceeded, StateFailed, StateCancelled:
		return true
	}
	return false
}

// legalMoves is the full transition relation. The gateway fires success,
// failure and dismiss callbacks independently; funnelling every change
// through this table means at most one terminal transition can ever win.
var legalMoves = map[State][]State{
	StateIdle:            {StateOrderCreated},
	StateOrderCreated:    {StateSubmitted, StateAwaitingPayment},
	StateAwaitingPayment: {StateVerifying, StateCancelled, StateFailed},
	StateVerifying:       {StateSucceeded, StateFailed},
}

// machine is the guarded state holder for one placement flow.
type machine struct {
	mu            sync.Mutex
	state         State
	failureReason string
}

// transition attempts to move to the target state and reports whether the
// move was legal. Calls after a terminal state always fail.
func (m *machine) transition(to State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, next := range legalMoves[m.state] {
		if next == to {
			m.state = to
			return true
		}
	}
	return false
}

func (m *machine) current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// markFailure records the gateway's failure description so a following
// dismissal is not reported as a plain cancellation.
func (m *machine) markFailure(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureReason = reason
}

func (m *machine) failure() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failureReason, m.failureReason != ""
}

package checkout

import "testing"

func TestMachineHappyPaths(t *testing.T) {
	paths := [][]State{
		{StateOrderCreated, StateSubmitted},
		{StateOrderCreated, StateAwaitingPayment, StateVerifying, StateSucceeded},
		{StateOrderCreated, StateAwaitingPayment, StateVerifying, StateFailed},
		{StateOrderCreated, StateAwaitingPayment, StateCancelled},
		{StateOrderCreated, StateAwaitingPayment, StateFailed},
	}

	for _, path := range paths {
		m := &machine{state: StateIdle}
		for _, next := range path {
			if !m.transition(next) {
				t.Errorf("path %v: transition %v -> %v rejected", path, m.current(), next)
				break
			}
		}
		if !m.current().Terminal() {
			t.Errorf("path %v ended in non-terminal state %v", path, m.current())
		}
	}
}

func TestMachineTerminalIsFinal(t *testing.T) {
	terminals := []State{StateSubmitted, StateSucceeded, StateFailed, StateCancelled}
	all := []State{
		StateIdle, StateOrderCreated, StateSubmitted, StateAwaitingPayment,
		StateVerifying, StateSucceeded, StateFailed, StateCancelled,
	}

	for _, terminal := range terminals {
		for _, next := range all {
			m := &machine{state: terminal}
			if m.transition(next) {
				t.Errorf("transition %v -> %v should be rejected", terminal, next)
			}
		}
	}
}

func TestMachineDuplicateCallbacksSettleOnce(t *testing.T) {
	// A success that already moved to verifying must win over a late
	// dismissal, and vice versa.
	m := &machine{state: StateAwaitingPayment}
	if !m.transition(StateVerifying) {
		t.Fatal("verifying should be reachable from awaiting payment")
	}
	if m.transition(StateCancelled) {
		t.Error("late dismissal must not preempt verification")
	}
	if !m.transition(StateSucceeded) {
		t.Error("verification should still settle to success")
	}

	m = &machine{state: StateAwaitingPayment}
	if !m.transition(StateCancelled) {
		t.Fatal("dismissal should be reachable from awaiting payment")
	}
	if m.transition(StateVerifying) {
		t.Error("late success must not reopen a cancelled flow")
	}
}

func TestMachineFailureFlag(t *testing.T) {
	m := &machine{state: StateAwaitingPayment}

	if _, failed := m.failure(); failed {
		t.Error("fresh machine should have no failure")
	}

	m.markFailure("card declined")
	reason, failed := m.failure()
	if !failed {
		t.Fatal("failure should be recorded")
	}
	if reason != "card declined" {
		t.Errorf("reason = %q, want %q", reason, "card declined")
	}
}

func TestStateStrings(t *testing.T) {
	if got := StateAwaitingPayment.String(); got != "awaiting_payment" {
		t.Errorf("String() = %q, want %q", got, "awaiting_payment")
	}
	if StateAwaitingPayment.Terminal() {
		t.Error("awaiting_payment must not be terminal")
	}
	if !StateSubmitted.Terminal() {
		t.Error("submitted must be terminal")
	}
}

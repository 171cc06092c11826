package lifecycle

import (
	"fmt"
	"sync/atomic"

	"github.com/Iron-Ham/clusterexec/internal/errors"
)

// State is a lifecycle state.
type State string

const (
	// StateJustCreated is the initial state.
	StateJustCreated State = "justCreated"

	// StatePaused accepts control commands but does not dispatch.
	StatePaused State = "paused"

	// StateRunning dispatches pending tasks to ready overseers.
	StateRunning State = "running"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Trigger moves the machine between states.
type Trigger string

const (
	// TriggerInitialized moves justCreated to paused.
	TriggerInitialized Trigger = "initialized"

	// TriggerRun moves paused to running.
	TriggerRun Trigger = "run"

	// TriggerPause moves running to paused.
	TriggerPause Trigger = "pause"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}

// Transition describes one completed state change.
type Transition struct {
	From    State
	To      State
	Trigger Trigger
}

// permit is one row of the transition table.
type permit struct {
	from    State
	trigger Trigger
	to      State
}

// permits is the transition table in a fixed order.
var permits = []permit{
	{StateJustCreated, TriggerInitialized, StatePaused},
	{StatePaused, TriggerRun, StateRunning},
	{StateRunning, TriggerPause, StatePaused},
}

// destination returns where trigger leads from state.
func destination(from State, trigger Trigger) (State, bool) {
	for _, p := range permits {
		if p.from == from && p.trigger == trigger {
			return p.to, true
		}
	}
	return "", false
}

// Machine is the coordinator's lifecycle state machine.
type Machine struct {
	state atomic.Value // State
	hooks []func(Transition)
}

// New returns a machine in StateJustCreated.
func New() *Machine {
	m := &Machine{}
	m.state.Store(StateJustCreated)
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state.Load().(State)
}

// OnTransition registers a hook invoked after every successful Fire.
// Hooks run on the firing goroutine in registration order.
func (m *Machine) OnTransition(hook func(Transition)) {
	m.hooks = append(m.hooks, hook)
}

// CanFire reports whether trigger is permitted from the current state.
func (m *Machine) CanFire(trigger Trigger) bool {
	_, ok := destination(m.State(), trigger)
	return ok
}

// Permitted returns the triggers valid from the current state, in table
// order.
func (m *Machine) Permitted() []Trigger {
	from := m.State()
	var out []Trigger
	for _, p := range permits {
		if p.from == from {
			out = append(out, p.trigger)
		}
	}
	return out
}

// Fire applies trigger. An unpermitted trigger returns a fatal
// *errors.ProtocolError wrapping errors.ErrTriggerNotPermitted and leaves
// the state unchanged.
func (m *Machine) Fire(trigger Trigger) error {
	from := m.State()
	to, ok := destination(from, trigger)
	if !ok {
		return errors.NewProtocolError(
			fmt.Sprintf("no valid leaving transitions are permitted from state %q for trigger %q", from, trigger),
			errors.ErrTriggerNotPermitted,
		).WithState(from.String()).WithTrigger(trigger.String())
	}

	m.state.Store(to)
	tr := Transition{From: from, To: to, Trigger: trigger}
	for _, hook := range m.hooks {
		hook(tr)
	}
	return nil
}

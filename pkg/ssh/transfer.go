package ssh

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Transfer states.
const (
	StatePending  = "pending"
	StatePrepared = "prepared"
	StateCopied   = "copied"
	StateVerified = "verified"
	StateFailed   = "failed"
)

// Transfer events.
const (
	EventPrepare = "prepare"
	EventCopy    = "copy"
	EventVerify  = "verify"
	EventFail    = "fail"
	EventReset   = "reset"
)

// TransferContext carries the transfer being tracked.
type TransferContext struct {
	Source      string
	Destination string
}

// TransferStateMachine enforces the order prepare -> copy -> verify.
type TransferStateMachine struct {
	interpreter *statekit.Interpreter[TransferContext]
}

func NewTransferStateMachine(source, destination string) (*TransferStateMachine, error) {
	builder := statekit.NewMachine[TransferContext]("transfer-machine").
		WithInitial(StatePending).
		WithContext(TransferContext{
			Source:      source,
			Destination: destination,
		})

	builder.State(StatePending).
		On(EventPrepare).Target(StatePrepared).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StatePrepared).
		On(EventCopy).Target(StateCopied).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateCopied).
		On(EventVerify).Target(StateVerified).
		On(EventFail).Target(StateFailed).
		Done()

	builder.State(StateVerified).
		On(EventReset).Target(StatePending).
		Done()

	builder.State(StateFailed).
		On(EventReset).Target(StatePending).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &TransferStateMachine{interpreter: interpreter}, nil
}

// Fire sends event and reports an error when it did not move the transfer.
func (sm *TransferStateMachine) Fire(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if sm.Current() != before {
		return nil
	}
	return fmt.Errorf("transfer cannot %s while %s", event, before)
}

func (sm *TransferStateMachine) Current() string {
	return string(sm.interpreter.State().Value)
}

package game

import "fmt"

// Command is one discrete player action.
type Command int

const (
	MoveUp Command = iota
	MoveLeft
	MoveDown
	MoveRight
	Flag
	Sweep
	Quit
	StartRound
)

func (c Command) String() string {
	titles := []string{
		"MoveUp",
		"MoveLeft",
		"MoveDown",
		"MoveRight",
		"Flag",
		"Sweep",
		"Quit",
		"StartRound",
	}
	if c < 0 || int(c) >= len(titles) {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return titles[c]
}

// Effect is the notable consequence of an applied command.
type Effect int

const (
	EffectNone Effect = iota
	EffectHitMine
	EffectWon
	EffectInvalid
	EffectQuit
)

func (e Effect) String() string {
	titles := []string{
		"None",
		"HitMine",
		"Won",
		"Invalid",
		"Quit",
	}
	if e < 0 || int(e) >= len(titles) {
		return fmt.Sprintf("Effect(%d)", int(e))
	}
	return titles[e]
}

type Result struct {
	Accepted bool
	Effect   Effect
}

// Event is a command as it travels from a remote client to the server.
type Event struct {
	Command Command
}

func NewEvent(c Command) *Event {
	return &Event{Command: c}
}

func NewEventFromBytes(bs []byte) (*Event, error) {
	e := new(Event)
	if err := FromGob(bs, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Event) String() string {
	return fmt.Sprintf("[%s]", e.Command)
}

func (e *Event) Bytes() ([]byte, error) {
	return ToGob(*e)
}

// Reply answers every client frame with the outcome and the session state
// after it. Err is empty when the command was accepted.
type Reply struct {
	Result   Result
	Err      string
	Snapshot Snapshot
}

func NewReplyFromBytes(bs []byte) (*Reply, error) {
	r := new(Reply)
	if err := FromGob(bs, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reply) Bytes() ([]byte, error) {
	return ToGob(*r)
}

package world

import (
	"fmt"

	"github.com/gridwalk/gridwalk/internal/grid"
)

// CommandKind selects what a Command does to its agent.
type CommandKind int

const (
	CmdEnqueueRandom CommandKind = iota
	CmdEnqueueCell
	CmdTeleportCell
	CmdTeleportRandom
	CmdStart
	CmdStop
)

func (k CommandKind) String() string {
	switch k {
	case CmdEnqueueRandom:
		return "enqueue_random"
	case CmdEnqueueCell:
		return "enqueue"
	case CmdTeleportCell:
		return "teleport"
	case CmdTeleportRandom:
		return "teleport_random"
	case CmdStart:
		return "start"
	case CmdStop:
		return "stop"
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is one input request, collected during a tick and applied by the
// input system. Cell is used only by the enqueue and teleport kinds.
type Command struct {
	Kind  CommandKind
	Agent string
	Cell  grid.Cell
}

func (c Command) String() string {
	switch c.Kind {
	case CmdEnqueueCell, CmdTeleportCell:
		return fmt.Sprintf("%s %s %s", c.Kind, c.Agent, c.Cell)
	}
	return fmt.Sprintf("%s %s", c.Kind, c.Agent)
}

// Apply runs cmd against its agent.
func (s *State) Apply(cmd Command) error {
	a, ok := s.Agent(cmd.Agent)
	if !ok {
		return fmt.Errorf("%s: %w", cmd, ErrUnknownAgent)
	}
	switch cmd.Kind {
	case CmdEnqueueRandom:
		_, err := a.EnqueueRandom()
		return err
	case CmdEnqueueCell:
		_, err := a.EnqueueCell(cmd.Cell)
		return err
	case CmdTeleportCell:
		return a.TeleportCell(cmd.Cell)
	case CmdTeleportRandom:
		_, err := a.TeleportRandom()
		return err
	case CmdStart:
		return a.Start()
	case CmdStop:
		a.Stop()
		return nil
	}
	return fmt.Errorf("unknown command kind %d", int(cmd.Kind))
}

// Package vm adapts the simulation core to the host's uniform VM
// interface: an opaque fixed-size state image, a tick entry point, and the
// debug string formatters the host uses in rollback traces.
package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"miniball/internal/sim"
)

// TickDurationMs is advertised to the host as the fixed step duration.
const TickDurationMs = sim.TickDurationMs

// Version identifies the simulation build the host is talking to. A state
// image carries no version, and SetState does not check one.
type Version struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// CurrentVersion of the state layout and tick semantics.
var CurrentVersion = Version{Major: 0, Minor: 1, Patch: 0}

// StateOctetSize is the exact size of a serialized Game image.
var StateOctetSize = binary.Size(sim.Game{})

// VM owns one Game value and exposes it behind the host contract.
type VM struct {
	game sim.Game
}

// New returns a VM holding a freshly initialized game.
func New() *VM {
	return &VM{game: sim.NewGame()}
}

// Game exposes the underlying state for in-process hosts (rendering,
// tests). Lockstep hosts use GetState/SetState instead.
func (v *VM) Game() *sim.Game {
	return &v.game
}

// Tick forwards one input batch to the simulation.
func (v *VM) Tick(inputs []sim.InputWithParticipant) {
	v.game.Tick(inputs)
}

// GetState serializes the entire game into a little-endian octet image of
// StateOctetSize bytes.
func (v *VM) GetState() []byte {
	var buf bytes.Buffer
	buf.Grow(StateOctetSize)
	if err := binary.Write(&buf, binary.LittleEndian, &v.game); err != nil {
		panic(fmt.Sprintf("vm: state serialization failed: %v", err))
	}
	return buf.Bytes()
}

// SetState restores a state image previously produced by GetState. An
// image of the wrong size is a host contract violation.
func (v *VM) SetState(octets []byte) {
	if len(octets) != StateOctetSize {
		panic(fmt.Sprintf("vm: state octet size mismatch: got %d, want %d", len(octets), StateOctetSize))
	}
	if err := binary.Read(bytes.NewReader(octets), binary.LittleEndian, &v.game); err != nil {
		panic(fmt.Sprintf("vm: state deserialization failed: %v", err))
	}
}

// StateToString renders the trace line the host logs when comparing
// authoritative and predicted states.
func (v *VM) StateToString() string {
	return fmt.Sprintf("state: tick: %d ball-pos: %.1f, %.1f",
		v.game.TickCount, v.game.Ball.Circle.Center[0], v.game.Ball.Circle.Center[1])
}

// InputToString renders one participant input for debug traces.
func InputToString(in sim.InputWithParticipant) string {
	switch in.Input.Kind {
	case sim.InputSelectTeam:
		return fmt.Sprintf("input: select team: %d", in.Input.PreferredTeamToJoin)
	case sim.InputInGame:
		return fmt.Sprintf("input: inGame: horizontalAxis: %d", in.Input.HorizontalAxis)
	case sim.InputForced:
		return "input: forced"
	case sim.InputWaitingForReconnect:
		return "input: waiting for reconnect"
	case sim.InputNone:
		return "input: none"
	default:
		panic(fmt.Sprintf("vm: unknown input kind %d", in.Input.Kind))
	}
}

package replay

import (
	"fmt"
	"io"

	"miniball/internal/sim"
	"miniball/internal/vm"
)

// Run replays a journal from scratch and returns the VM holding the final
// state. Used to cross-check determinism and to reconstruct a match from a
// recording.
func Run(r io.Reader) (*vm.VM, error) {
	stateImage, ticks, err := Read(r)
	if err != nil {
		return nil, err
	}
	if len(stateImage) != vm.StateOctetSize {
		return nil, fmt.Errorf("replay: state image is %d octets, want %d", len(stateImage), vm.StateOctetSize)
	}

	machine := vm.New()
	machine.SetState(stateImage)
	for _, batch := range ticks {
		machine.Tick(batch)
	}
	return machine, nil
}

// RunAgainst replays the journal and reports whether the final state
// matches the given game value exactly.
func RunAgainst(r io.Reader, want *sim.Game) (bool, error) {
	machine, err := Run(r)
	if err != nil {
		return false, err
	}
	return *machine.Game() == *want, nil
}

// Package replay records the inputs fed to a deterministic simulation.
// Because the core is a pure function of state and inputs, a journal of
// the initial state image plus every tick's input batch is a complete
// recording: replaying it reproduces the final state bit for bit.
package replay

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"miniball/internal/sim"
)

// RecordBufferSize bounds the async writer queue. Records past the bound
// are dropped and counted rather than stalling the tick loop.
const RecordBufferSize = 1024

// header is the first journal line: the serialized starting state.
type header struct {
	Version string `json:"version"`
	State   string `json:"state"` // base64 of the VM state image
}

// inputRecord is one participant input inside a tick record.
type inputRecord struct {
	ParticipantID uint8 `json:"participantId"`
	Kind          uint8 `json:"kind"`
	Horizontal    int8  `json:"h,omitempty"`
	Vertical      int8  `json:"v,omitempty"`
	Buttons       uint8 `json:"buttons,omitempty"`
	Team          uint8 `json:"team,omitempty"`
}

// tickRecord is one journal line after the header.
type tickRecord struct {
	Tick   uint64        `json:"tick"`
	Inputs []inputRecord `json:"inputs"`
}

// Journal appends tick records to a JSONL file through an async writer.
type Journal struct {
	records chan tickRecord

	writerWg sync.WaitGroup
	stopOnce sync.Once

	file *os.File

	droppedCount atomic.Uint64
	totalCount   atomic.Uint64
}

// Create opens a journal file, writes the header for the given starting
// state image, and starts the writer goroutine.
func Create(path, version string, stateImage []byte) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("replay: create journal: %w", err)
	}

	enc := json.NewEncoder(file)
	if err := enc.Encode(header{Version: version, State: base64.StdEncoding.EncodeToString(stateImage)}); err != nil {
		file.Close()
		return nil, fmt.Errorf("replay: write header: %w", err)
	}

	j := &Journal{
		records: make(chan tickRecord, RecordBufferSize),
		file:    file,
	}
	j.writerWg.Add(1)
	go j.writeLoop()
	return j, nil
}

// Append queues one tick's input batch. It never blocks the caller; if
// the buffer is full the record is dropped and counted.
func (j *Journal) Append(tick uint64, inputs []sim.InputWithParticipant) {
	rec := tickRecord{Tick: tick, Inputs: make([]inputRecord, len(inputs))}
	for i, in := range inputs {
		rec.Inputs[i] = inputRecord{
			ParticipantID: in.ParticipantID,
			Kind:          uint8(in.Input.Kind),
			Horizontal:    in.Input.HorizontalAxis,
			Vertical:      in.Input.VerticalAxis,
			Buttons:       in.Input.Buttons,
			Team:          in.Input.PreferredTeamToJoin,
		}
	}

	select {
	case j.records <- rec:
		j.totalCount.Add(1)
	default:
		j.droppedCount.Add(1)
	}
}

// Stop flushes pending records and closes the file.
func (j *Journal) Stop() {
	j.stopOnce.Do(func() {
		close(j.records)
		j.writerWg.Wait()
		j.file.Close()
	})
}

// Stats returns totals for monitoring.
func (j *Journal) Stats() (total, dropped uint64) {
	return j.totalCount.Load(), j.droppedCount.Load()
}

func (j *Journal) writeLoop() {
	defer j.writerWg.Done()

	w := bufio.NewWriter(j.file)
	enc := json.NewEncoder(w)
	for rec := range j.records {
		if err := enc.Encode(rec); err != nil {
			j.droppedCount.Add(1)
		}
	}
	w.Flush()
}

// Read parses a journal stream into its starting state image and the
// sequence of tick input batches.
func Read(r io.Reader) (stateImage []byte, ticks [][]sim.InputWithParticipant, err error) {
	dec := json.NewDecoder(r)

	var hdr header
	if err := dec.Decode(&hdr); err != nil {
		return nil, nil, fmt.Errorf("replay: read header: %w", err)
	}
	stateImage, err = base64.StdEncoding.DecodeString(hdr.State)
	if err != nil {
		return nil, nil, fmt.Errorf("replay: decode state image: %w", err)
	}

	for {
		var rec tickRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, fmt.Errorf("replay: read record: %w", err)
		}

		batch := make([]sim.InputWithParticipant, len(rec.Inputs))
		for i, in := range rec.Inputs {
			batch[i] = sim.InputWithParticipant{
				ParticipantID: in.ParticipantID,
				Input: sim.PlayerInput{
					Kind:                sim.InputKind(in.Kind),
					HorizontalAxis:      in.Horizontal,
					VerticalAxis:        in.Vertical,
					Buttons:             in.Buttons,
					PreferredTeamToJoin: in.Team,
				},
			}
		}
		ticks = append(ticks, batch)
	}
	return stateImage, ticks, nil
}

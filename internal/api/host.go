package api

import (
	"log"
	"sync"
	"time"

	"miniball/internal/replay"
	"miniball/internal/sim"
	"miniball/internal/vm"
)

// Host drives the deterministic VM the way a lockstep engine would: it
// collects the latest input per participant, assembles one batch per tick,
// and advances the simulation on a fixed 16 ms ticker. All locking lives
// here; the core below it stays single-threaded and pure.
type Host struct {
	mu      sync.Mutex
	machine *vm.VM
	journal *replay.Journal

	active [sim.MaxParticipants]bool
	latest [sim.MaxParticipants]sim.PlayerInput

	maxParticipants int

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// onTick receives a state summary after every advanced tick.
	onTick func(Summary)
}

// NewHost wraps a VM. maxParticipants caps how many join slots the host
// hands out; it never exceeds the simulation's own table size.
func NewHost(machine *vm.VM, maxParticipants int) *Host {
	if maxParticipants <= 0 || maxParticipants > sim.MaxParticipants {
		maxParticipants = sim.MaxParticipants
	}
	return &Host{
		machine:         machine,
		maxParticipants: maxParticipants,
		stopChan:        make(chan struct{}),
	}
}

// AttachJournal records every tick's input batch for replay.
func (h *Host) AttachJournal(j *replay.Journal) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.journal = j
}

// SetOnTick installs the per-tick summary callback.
func (h *Host) SetOnTick(fn func(Summary)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onTick = fn
}

// Join allocates the lowest free participant id. The second return is
// false when the host is full.
func (h *Host) Join() (uint8, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := 0; id < h.maxParticipants; id++ {
		if !h.active[id] {
			h.active[id] = true
			h.latest[id] = sim.PlayerInput{Kind: sim.InputNone}
			return uint8(id), true
		}
	}
	return 0, false
}

// Leave frees a participant slot. Its absence from the next batch makes
// the simulation despawn the player and avatar.
func (h *Host) Leave(id uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(id) < len(h.active) {
		h.active[id] = false
	}
}

// Submit replaces the participant's input for upcoming ticks.
func (h *Host) Submit(id uint8, input sim.PlayerInput) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if int(id) < len(h.active) && h.active[id] {
		h.latest[id] = input
	}
}

// Start runs the tick loop at the fixed step duration.
func (h *Host) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	h.ticker = time.NewTicker(vm.TickDurationMs * time.Millisecond)
	go func() {
		for {
			select {
			case <-h.ticker.C:
				h.Step()
			case <-h.stopChan:
				return
			}
		}
	}()
	log.Printf("⚽ simulation host started (one tick every %d ms)", vm.TickDurationMs)
}

// Stop halts the tick loop.
func (h *Host) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	h.ticker.Stop()
	close(h.stopChan)
	log.Println("🛑 simulation host stopped")
}

// Step advances exactly one tick. Exposed for tests and manual stepping.
func (h *Host) Step() {
	h.mu.Lock()

	batch := make([]sim.InputWithParticipant, 0, h.maxParticipants)
	for id := 0; id < h.maxParticipants; id++ {
		if h.active[id] {
			batch = append(batch, sim.InputWithParticipant{ParticipantID: uint8(id), Input: h.latest[id]})
		}
	}

	started := time.Now()
	h.machine.Tick(batch)
	ObserveTickDuration(time.Since(started))

	game := h.machine.Game()
	if h.journal != nil {
		h.journal.Append(uint64(game.TickCount), batch)
	}

	summary := summarize(game)
	onTick := h.onTick
	h.mu.Unlock()

	UpdateSimGauges(summary)
	if onTick != nil {
		onTick(summary)
	}
}

// WithGame runs fn with the VM's game under the host lock. Used by the
// frame endpoint; fn must not retain the pointer.
func (h *Host) WithGame(fn func(*sim.Game)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.machine.Game())
}

// Summary returns the current state summary.
func (h *Host) Summary() Summary {
	h.mu.Lock()
	defer h.mu.Unlock()
	return summarize(h.machine.Game())
}

// Summary is the JSON shape broadcast to websocket clients and served by
// the state endpoint.
type Summary struct {
	Tick           uint16        `json:"tick"`
	Phase          string        `json:"phase"`
	PhaseCountDown uint16        `json:"phaseCountDown"`
	MatchClock     uint16        `json:"matchClockLeftInTicks"`
	Scores         [2]uint8      `json:"scores"`
	LatestScored   uint8         `json:"latestScoredTeamIndex"`
	Ball           BallSummary   `json:"ball"`
	PlayerCount    uint8         `json:"playerCount"`
	Avatars        []AvatarState `json:"avatars"`
}

// BallSummary is the ball part of a Summary.
type BallSummary struct {
	X  float32 `json:"x"`
	Y  float32 `json:"y"`
	VX float32 `json:"vx"`
	VY float32 `json:"vy"`
}

// AvatarState is one avatar in a Summary.
type AvatarState struct {
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Rotation  float32 `json:"rotation"`
	Team      uint8   `json:"team"`
	KickPower uint8   `json:"kickPower"`
	Sliding   bool    `json:"sliding"`
}

func summarize(g *sim.Game) Summary {
	s := Summary{
		Tick:           g.TickCount,
		Phase:          phaseName(g.Phase),
		PhaseCountDown: g.PhaseCountDown,
		MatchClock:     g.MatchClockLeftInTicks,
		Scores:         [2]uint8{g.Teams[0].Score, g.Teams[1].Score},
		LatestScored:   g.LatestScoredTeamIndex,
		Ball: BallSummary{
			X:  g.Ball.Circle.Center[0],
			Y:  g.Ball.Circle.Center[1],
			VX: g.Ball.Velocity[0],
			VY: g.Ball.Velocity[1],
		},
		PlayerCount: g.PlayerCount,
		Avatars:     make([]AvatarState, 0, g.AvatarCount),
	}
	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]
		s.Avatars = append(s.Avatars, AvatarState{
			X:         avatar.Circle.Center[0],
			Y:         avatar.Circle.Center[1],
			Rotation:  avatar.VisualRotation,
			Team:      avatar.TeamIndex,
			KickPower: avatar.KickPower,
			Sliding:   avatar.SlideTackleRemainingTicks > 0,
		})
	}
	return s
}

func phaseName(p sim.GamePhase) string {
	switch p {
	case sim.PhaseWaitingForPlayers:
		return "waitingForPlayers"
	case sim.PhaseCountDown:
		return "countDown"
	case sim.PhasePlaying:
		return "playing"
	case sim.PhaseAfterAGoal:
		return "afterAGoal"
	case sim.PhasePostGame:
		return "postGame"
	default:
		return "unknown"
	}
}

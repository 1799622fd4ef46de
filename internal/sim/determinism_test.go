package sim

import (
	"math/rand"
	"testing"

	"miniball/internal/geom"
)

// randomBatch builds an input batch over a small participant population.
// Participants drop in and out so join/leave paths are exercised too.
// maxAxis bounds the stick deflection; pass 127 for the full range.
func randomBatch(rng *rand.Rand, maxAxis int) []InputWithParticipant {
	axis := func() int8 {
		return int8(rng.Intn(2*maxAxis+1) - maxAxis)
	}

	var batch []InputWithParticipant
	for id := uint8(0); id < 6; id++ {
		if rng.Float32() < 0.05 {
			continue // participant absent this tick
		}
		var input PlayerInput
		switch rng.Intn(6) {
		case 0:
			input = PlayerInput{Kind: InputNone}
		case 1:
			input = PlayerInput{Kind: InputForced}
		case 2:
			input = PlayerInput{Kind: InputWaitingForReconnect}
		case 3:
			input = SelectTeamInput(uint8(rng.Intn(3))) // sometimes invalid
		default:
			input = InGameInput(axis(), axis(), uint8(rng.Intn(4)))
		}
		batch = append(batch, InputWithParticipant{ParticipantID: id, Input: input})
	}
	return batch
}

func checkInvariants(t *testing.T, g *Game, tick int) {
	t.Helper()

	if g.PlayerCount > MaxPlayers {
		t.Fatalf("tick %d: player count %d exceeds capacity", tick, g.PlayerCount)
	}
	if g.AvatarCount > g.PlayerCount {
		t.Fatalf("tick %d: avatar count %d exceeds player count %d", tick, g.AvatarCount, g.PlayerCount)
	}

	for id := range g.ParticipantLookup {
		p := &g.ParticipantLookup[id]
		if !p.IsUsed {
			continue
		}
		if p.PlayerIndex >= g.PlayerCount {
			t.Fatalf("tick %d: participant %d points at player %d of %d", tick, id, p.PlayerIndex, g.PlayerCount)
		}
		if g.Players[p.PlayerIndex].AssignedToParticipantIndex != uint8(id) {
			t.Fatalf("tick %d: participant %d / player %d back-pointer broken", tick, id, p.PlayerIndex)
		}
	}

	for i := uint8(0); i < g.PlayerCount; i++ {
		player := &g.Players[i]
		if player.ControllingAvatarIndex == NoIndex {
			continue
		}
		if player.ControllingAvatarIndex >= g.AvatarCount {
			t.Fatalf("tick %d: player %d points at avatar %d of %d", tick, i, player.ControllingAvatarIndex, g.AvatarCount)
		}
		if g.Avatars[player.ControllingAvatarIndex].ControlledByPlayerIndex != i {
			t.Fatalf("tick %d: player %d / avatar %d pairing broken", tick, i, player.ControllingAvatarIndex)
		}
	}

	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]
		if avatar.ControlledByPlayerIndex >= g.PlayerCount {
			t.Fatalf("tick %d: avatar %d controlled by player %d of %d", tick, i, avatar.ControlledByPlayerIndex, g.PlayerCount)
		}
		if g.Players[avatar.ControlledByPlayerIndex].ControllingAvatarIndex != i {
			t.Fatalf("tick %d: avatar %d / player %d pairing broken", tick, i, avatar.ControlledByPlayerIndex)
		}
		if speed := geom.Length(avatar.Velocity); speed > MaxAvatarSpeed+0.01 {
			t.Fatalf("tick %d: avatar %d speed %v over the cap", tick, i, speed)
		}
	}
}

// TestInvariantsUnderRandomInput runs thousands of randomized ticks and
// checks the table invariants at every boundary.
func TestInvariantsUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	g := NewGame()

	for tick := 0; tick < 10000; tick++ {
		g.Tick(randomBatch(rng, 127))
		checkInvariants(t, &g, tick)
	}
}

// TestDeterminism feeds two independent game copies the same inputs and
// requires bit-identical states throughout.
func TestDeterminism(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := NewGame()
	b := NewGame()

	for tick := 0; tick < 5000; tick++ {
		batch := randomBatch(rng, 127)

		// Hand each copy its own slice: a shared backing array could mask
		// an implementation that mutates its input.
		batchCopy := make([]InputWithParticipant, len(batch))
		copy(batchCopy, batch)

		a.Tick(batch)
		b.Tick(batchCopy)

		if a != b {
			t.Fatalf("tick %d: states diverged", tick)
		}
	}
}

// TestSnapshotRestoreResumesIdentically verifies a struct-copy snapshot
// mid-match continues exactly like the original.
func TestSnapshotRestoreResumesIdentically(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewGame()

	for tick := 0; tick < 500; tick++ {
		g.Tick(randomBatch(rng, 127))
	}

	snapshot := g // plain struct copy is a full snapshot

	after := make([][]InputWithParticipant, 200)
	for i := range after {
		after[i] = randomBatch(rng, 127)
	}

	for _, batch := range after {
		g.Tick(batch)
	}
	for _, batch := range after {
		snapshot.Tick(batch)
	}

	if g != snapshot {
		t.Fatal("restored snapshot diverged from the original")
	}
}

// TestBallStaysOnPitchUnderRandomInput verifies the ball never escapes
// the playable region (pitch plus goal mouths) over a long random match.
// Stick deflection stays in the ordinary-play range; a full-deflection
// sprint kick can legitimately out-run the discrete collision band.
func TestBallStaysOnPitchUnderRandomInput(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	g := NewGame()

	for tick := 0; tick < 10000; tick++ {
		g.Tick(randomBatch(rng, 24))

		c := g.Ball.Circle.Center
		if c[1] < ArenaLineBottom-BallRadius || c[1] > ArenaLineTop+BallRadius {
			t.Fatalf("tick %d: ball escaped vertically at %v", tick, c)
		}
		if c[0] < arenaLeft-GoalDetectWidth-BallRadius || c[0] > arenaRight+GoalDetectWidth+BallRadius {
			t.Fatalf("tick %d: ball escaped horizontally at %v", tick, c)
		}
	}
}

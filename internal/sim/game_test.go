package sim

import (
	"testing"

	"miniball/internal/geom"
)

func geomVec(x, y float32) geom.Vec2 {
	return geom.Vec2{x, y}
}

func inGame(id uint8, h, v int8, buttons uint8) InputWithParticipant {
	return InputWithParticipant{ParticipantID: id, Input: InGameInput(h, v, buttons)}
}

func selectTeam(id, team uint8) InputWithParticipant {
	return InputWithParticipant{ParticipantID: id, Input: SelectTeamInput(team)}
}

// TestNewGame verifies the initial state
func TestNewGame(t *testing.T) {
	g := NewGame()

	if g.Phase != PhaseWaitingForPlayers {
		t.Errorf("initial phase = %d, want waiting for players", g.Phase)
	}
	if g.PlayerCount != 0 || g.AvatarCount != 0 {
		t.Errorf("initial counts = %d players, %d avatars, want 0, 0", g.PlayerCount, g.AvatarCount)
	}
	if g.MatchClockLeftInTicks != MatchDurationInTicks {
		t.Errorf("match clock = %d, want %d", g.MatchClockLeftInTicks, MatchDurationInTicks)
	}
	if g.Ball.Circle.Center != PitchCenter() {
		t.Errorf("ball starts at %v, want pitch center %v", g.Ball.Circle.Center, PitchCenter())
	}
	if g.TickCount != 0 {
		t.Errorf("tick count = %d, want 0", g.TickCount)
	}
}

// TestFirstJoinStartsCountdown covers the join-then-commit flow: an
// in-game input alone creates a player but no avatar; committing to a
// team starts the countdown and spawns the avatar.
func TestFirstJoinStartsCountdown(t *testing.T) {
	g := NewGame()

	g.Tick([]InputWithParticipant{inGame(3, -99, 0, 0)})
	if g.PlayerCount != 1 {
		t.Fatalf("player count = %d, want 1", g.PlayerCount)
	}
	if g.AvatarCount != 0 {
		t.Errorf("avatar count = %d before team commit, want 0", g.AvatarCount)
	}
	if g.Phase != PhaseWaitingForPlayers {
		t.Errorf("phase = %d, want still waiting", g.Phase)
	}

	g.Tick([]InputWithParticipant{selectTeam(3, 0)})
	if g.Phase != PhaseCountDown {
		t.Fatalf("phase = %d, want countdown", g.Phase)
	}
	if g.PhaseCountDown != CountDownTicks {
		t.Errorf("countdown = %d, want %d", g.PhaseCountDown, CountDownTicks)
	}
	if g.AvatarCount != 1 {
		t.Errorf("avatar count = %d after commit, want 1", g.AvatarCount)
	}
	if g.Players[0].Phase != PlayerPhasePlaying {
		t.Errorf("player phase = %d, want playing", g.Players[0].Phase)
	}
	if g.Avatars[0].TeamIndex != 0 {
		t.Errorf("avatar team = %d, want 0", g.Avatars[0].TeamIndex)
	}
}

// TestCountdownCompletion verifies the two-step transition out of the
// countdown: the tick at 1 decrements, the tick at 0 flips to playing.
func TestCountdownCompletion(t *testing.T) {
	g := NewGame()
	g.Tick([]InputWithParticipant{selectTeam(0, 0)})
	if g.Phase != PhaseCountDown {
		t.Fatalf("setup failed: phase = %d", g.Phase)
	}

	g.PhaseCountDown = 1
	keep := []InputWithParticipant{inGame(0, 0, 0, 0)}

	g.Tick(keep)
	if g.Phase != PhaseCountDown || g.PhaseCountDown != 0 {
		t.Fatalf("after decrement tick: phase %d countdown %d, want countdown phase at 0", g.Phase, g.PhaseCountDown)
	}

	g.Tick(keep)
	if g.Phase != PhasePlaying {
		t.Errorf("phase = %d, want playing", g.Phase)
	}
}

// TestLateJoinDuringCountdown verifies a commit inside the spawn window
// produces an avatar immediately.
func TestLateJoinDuringCountdown(t *testing.T) {
	g := NewGame()
	g.Tick([]InputWithParticipant{selectTeam(0, 0)})

	g.Tick([]InputWithParticipant{
		inGame(0, 0, 0, 0),
		selectTeam(7, 1),
	})

	if g.PlayerCount != 2 {
		t.Fatalf("player count = %d, want 2", g.PlayerCount)
	}
	if g.AvatarCount != 2 {
		t.Errorf("avatar count = %d, want 2 (late join spawns immediately)", g.AvatarCount)
	}
	if g.Avatars[1].TeamIndex != 1 {
		t.Errorf("late avatar team = %d, want 1", g.Avatars[1].TeamIndex)
	}
}

// TestInvalidTeamSelectIsAbsorbed verifies a select with a bogus team id
// commits the player but never spawns an avatar.
func TestInvalidTeamSelectIsAbsorbed(t *testing.T) {
	g := NewGame()
	g.Tick([]InputWithParticipant{selectTeam(0, 0)})

	g.Tick([]InputWithParticipant{
		inGame(0, 0, 0, 0),
		selectTeam(4, 9),
	})
	if g.AvatarCount != 1 {
		t.Errorf("avatar count = %d, want 1 (invalid team never spawns)", g.AvatarCount)
	}
	if g.Players[1].Phase != PlayerPhaseCommittedToTeam {
		t.Errorf("player phase = %d, want committed", g.Players[1].Phase)
	}
}

// TestDepartureCleanup covers swap-with-last removal: when the first
// joiner leaves, the survivor is swapped into its slot and every
// back-pointer still resolves.
func TestDepartureCleanup(t *testing.T) {
	g := NewGame()

	// Participant 5 joins first (player 0), participant 2 second (player 1).
	g.Tick([]InputWithParticipant{selectTeam(5, 1), selectTeam(2, 0)})
	if g.PlayerCount != 2 || g.AvatarCount != 2 {
		t.Fatalf("setup: %d players, %d avatars, want 2, 2", g.PlayerCount, g.AvatarCount)
	}

	// Participant 5 is absent from the next batch: it has left.
	g.Tick([]InputWithParticipant{inGame(2, 0, 0, 0)})

	if g.ParticipantLookup[5].IsUsed {
		t.Error("departed participant slot should be unused")
	}
	if g.PlayerCount != 1 {
		t.Fatalf("player count = %d, want 1", g.PlayerCount)
	}
	if g.AvatarCount != 1 {
		t.Fatalf("avatar count = %d, want 1", g.AvatarCount)
	}

	// The survivor (participant 2) was swapped into player slot 0.
	p := &g.ParticipantLookup[2]
	if !p.IsUsed || p.PlayerIndex != 0 {
		t.Fatalf("surviving participant entry = %+v, want used at player 0", *p)
	}
	player := &g.Players[p.PlayerIndex]
	if player.AssignedToParticipantIndex != 2 {
		t.Errorf("player participant back-pointer = %d, want 2", player.AssignedToParticipantIndex)
	}
	if player.ControllingAvatarIndex == NoIndex {
		t.Fatal("survivor lost its avatar")
	}
	avatar := &g.Avatars[player.ControllingAvatarIndex]
	if avatar.ControlledByPlayerIndex != p.PlayerIndex {
		t.Errorf("avatar back-pointer = %d, want %d", avatar.ControlledByPlayerIndex, p.PlayerIndex)
	}
	if avatar.TeamIndex != 0 {
		t.Errorf("surviving avatar team = %d, want 0", avatar.TeamIndex)
	}
}

// TestMatchEnd verifies the clock-exhausted transition into post game and
// the full reset back into a countdown.
func TestMatchEnd(t *testing.T) {
	g := NewGame()
	g.Tick([]InputWithParticipant{selectTeam(0, 0)})
	keep := []InputWithParticipant{inGame(0, 0, 0, 0)}

	g.Phase = PhasePlaying
	g.MatchClockLeftInTicks = 0
	g.Teams[0].Score = 3
	g.Teams[1].Score = 1

	g.Tick(keep)
	if g.Phase != PhasePostGame {
		t.Fatalf("phase = %d, want post game", g.Phase)
	}
	if g.PhaseCountDown != PostGameTicks {
		t.Fatalf("countdown = %d, want %d", g.PhaseCountDown, PostGameTicks)
	}

	for i := 0; i < PostGameTicks; i++ {
		g.Tick(keep)
	}
	if g.Phase != PhasePostGame || g.PhaseCountDown != 0 {
		t.Fatalf("after draining countdown: phase %d countdown %d", g.Phase, g.PhaseCountDown)
	}

	g.Tick(keep)
	if g.Phase != PhaseCountDown {
		t.Fatalf("phase = %d, want countdown after reset", g.Phase)
	}
	if g.Teams[0].Score != 0 || g.Teams[1].Score != 0 {
		t.Errorf("scores = %d:%d, want 0:0", g.Teams[0].Score, g.Teams[1].Score)
	}
	if g.MatchClockLeftInTicks != MatchDurationInTicks {
		t.Errorf("match clock = %d, want %d", g.MatchClockLeftInTicks, MatchDurationInTicks)
	}
	if g.Ball.Circle.Center != PitchCenter() {
		t.Errorf("ball at %v, want pitch center", g.Ball.Circle.Center)
	}
}

// TestAfterGoalReset verifies the kickoff reset at the end of the
// post-goal pause: formation positions, cleared avatar state, recentered
// ball.
func TestAfterGoalReset(t *testing.T) {
	g := NewGame()
	g.Tick([]InputWithParticipant{selectTeam(0, 0), selectTeam(1, 1)})
	keep := []InputWithParticipant{inGame(0, 0, 0, 0), inGame(1, 0, 0, 0)}

	g.Phase = PhaseAfterAGoal
	g.PhaseCountDown = 0
	g.Avatars[0].Velocity = geomVec(5, 5)
	g.Avatars[0].KickPower = 50
	g.Avatars[1].SlideTackleRemainingTicks = 9
	g.Ball.Velocity = geomVec(-3, 2)

	g.Tick(keep)

	if g.Phase != PhaseCountDown || g.PhaseCountDown != CountDownTicks {
		t.Fatalf("phase %d countdown %d, want countdown %d", g.Phase, g.PhaseCountDown, CountDownTicks)
	}
	for i := uint8(0); i < g.AvatarCount; i++ {
		a := &g.Avatars[i]
		if a.Velocity != geomVec(0, 0) || a.KickPower != 0 || a.SlideTackleRemainingTicks != 0 {
			t.Errorf("avatar %d state not cleared: %+v", i, *a)
		}
		want := formationPosition(a.TeamIndex, 0)
		if a.Circle.Center != want {
			t.Errorf("avatar %d at %v, want formation slot %v", i, a.Circle.Center, want)
		}
		if a.VisualRotation != teamFacing(a.TeamIndex) {
			t.Errorf("avatar %d rotation = %v, want %v", i, a.VisualRotation, teamFacing(a.TeamIndex))
		}
	}
	if g.Ball.Velocity != geomVec(0, 0) || g.Ball.CollideCounter != 0 {
		t.Errorf("ball not reset: %+v", g.Ball)
	}
}

// TestTickCountWraps verifies the counter wraps at the uint16 boundary
// instead of misbehaving.
func TestTickCountWraps(t *testing.T) {
	g := NewGame()
	g.TickCount = 0xffff
	g.Tick(nil)
	if g.TickCount != 0 {
		t.Errorf("tick count = %d, want wrap to 0", g.TickCount)
	}
}

// TestUnknownParticipantPanics verifies the host contract violation is
// fatal rather than absorbed.
func TestUnknownParticipantPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for participant id outside the lookup table")
		}
	}()
	g := NewGame()
	g.Tick([]InputWithParticipant{inGame(MaxParticipants, 0, 0, 0)})
}

package sim

import "miniball/internal/geom"

// GamePhase is the match-level state machine.
type GamePhase uint8

const (
	PhaseWaitingForPlayers GamePhase = iota
	PhaseCountDown
	PhasePlaying
	PhaseAfterAGoal
	PhasePostGame
)

// Team holds the per-team score. There are always exactly two.
type Team struct {
	Score uint8
}

// Game is the entire simulation state. It is plain old data: fixed-size
// arrays, no pointers, no heap-backed collections. Struct assignment is a
// complete snapshot, and the host may copy the value bitwise at any tick
// boundary.
type Game struct {
	ParticipantLookup          [MaxParticipants]Participant
	LastParticipantLookupCount uint8

	Players     [MaxPlayers]Player
	PlayerCount uint8

	Avatars     [MaxPlayers]Avatar
	AvatarCount uint8

	Teams [MaxTeams]Team
	Ball  Ball

	Phase                 GamePhase
	PhaseCountDown        uint16
	TickCount             uint16
	MatchClockLeftInTicks uint16
	LatestScoredTeamIndex uint8
}

// NewGame returns the initial state: empty tables, full match clock, ball
// at the kickoff spot, waiting for players.
func NewGame() Game {
	var g Game
	g.Reset()
	return g
}

// Reset reinitializes the state in place.
func (g *Game) Reset() {
	*g = Game{}
	for i := range g.ParticipantLookup {
		g.ParticipantLookup[i].ParticipantID = uint8(i)
	}
	g.Phase = PhaseWaitingForPlayers
	g.MatchClockLeftInTicks = MatchDurationInTicks
	g.placeBallAtCenter()
	g.LatestScoredTeamIndex = NoIndex
}

// Tick advances the simulation by exactly one step. The input batch holds
// at most one entry per participant and is not sorted; identical state and
// inputs produce bit-identical results. It never fails on any input
// pattern short of a host contract violation.
func (g *Game) Tick(inputs []InputWithParticipant) {
	g.reconcileInputs(inputs)
	g.projectInputs()
	g.TickCount++

	switch g.Phase {
	case PhaseWaitingForPlayers:
		g.tickWaitingForPlayers()
	case PhaseCountDown:
		g.tickCountDown()
	case PhasePlaying:
		g.tickPlaying()
	case PhaseAfterAGoal:
		g.tickAfterAGoal()
	case PhasePostGame:
		g.tickPostGame()
	}
}

func (g *Game) tickWaitingForPlayers() {
	anyCommitted := false
	for i := uint8(0); i < g.PlayerCount; i++ {
		if g.Players[i].Phase == PlayerPhaseCommittedToTeam {
			anyCommitted = true
			break
		}
	}
	if !anyCommitted {
		return
	}

	g.Phase = PhaseCountDown
	g.PhaseCountDown = CountDownTicks
	g.spawnAvatarsForCommitted()
}

func (g *Game) tickCountDown() {
	if g.PhaseCountDown == 0 {
		g.Phase = PhasePlaying
		return
	}
	g.PhaseCountDown--
}

// tickPlaying runs the physics core. The order is fixed and part of the
// contract: match clock, avatars, dribble, kick, slide-tackle timers,
// ball, goal check.
func (g *Game) tickPlaying() {
	if g.MatchClockLeftInTicks == 0 {
		g.Phase = PhasePostGame
		g.PhaseCountDown = PostGameTicks
		return
	}
	g.MatchClockLeftInTicks--

	g.tickAvatars()
	g.tickDribble()
	g.tickKick()
	g.tickSlideTackleTimers()
	g.tickBall()
	g.checkGoals()
}

// checkGoals scores when the ball has fully crossed a goal face: both a
// positive intersection depth and the ball's far edge past the face plane
// along the goal's facing axis.
func (g *Game) checkGoals() {
	for i := range goals {
		goal := &goals[i]
		collision := geom.RectCircleIntersect(goal.Rect, g.Ball.Circle)
		if collision.Depth <= 0.001 {
			continue
		}

		center := g.Ball.Circle.Center
		radius := g.Ball.Circle.Radius
		var crossed bool
		if goal.FacingLeft {
			crossed = center[0]-radius > goal.Rect.Pos[0]
		} else {
			crossed = center[0]+radius < goal.Rect.Pos[0]+goal.Rect.Size[0]
		}
		if !crossed {
			continue
		}

		opposing := 1 - goal.OwnedByTeamIndex
		g.Teams[opposing].Score++
		g.LatestScoredTeamIndex = opposing
		g.Phase = PhaseAfterAGoal
		g.PhaseCountDown = AfterAGoalTicks
		return
	}
}

func (g *Game) tickAfterAGoal() {
	if g.PhaseCountDown > 0 {
		g.PhaseCountDown--
		return
	}
	g.resetPitch()
}

func (g *Game) tickPostGame() {
	if g.PhaseCountDown > 0 {
		g.PhaseCountDown--
		return
	}
	g.Teams[0].Score = 0
	g.Teams[1].Score = 0
	g.MatchClockLeftInTicks = MatchDurationInTicks
	g.resetPitch()
}

// resetPitch arms the next kickoff: spawn committed-but-unspawned players,
// place every avatar on its team's formation slot, clear all transient
// avatar state, recenter the ball, and start the countdown.
func (g *Game) resetPitch() {
	g.spawnAvatarsForCommitted()

	var teamSlots [MaxTeams]int
	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]
		team := avatar.TeamIndex
		slot := teamSlots[team]
		teamSlots[team]++

		avatar.Circle = geom.Circle{Center: formationPosition(team, slot), Radius: AvatarRadius}
		avatar.RequestedVelocity = geom.Vec2{}
		avatar.Velocity = geom.Vec2{}
		avatar.VisualRotation = teamFacing(team)
		avatar.DribbleCooldown = 0
		avatar.KickCooldown = 0
		avatar.SlideTackleCooldown = 0
		avatar.SlideTackleRemainingTicks = 0
		avatar.SlideTackleRotation = 0
		avatar.RequestBuildKickPower = false
		avatar.RequestSlideTackle = false
		avatar.KickPower = 0
	}

	g.placeBallAtCenter()
	g.PhaseCountDown = CountDownTicks
	g.Phase = PhaseCountDown
}

func (g *Game) placeBallAtCenter() {
	g.Ball = Ball{Circle: geom.Circle{Center: PitchCenter(), Radius: BallRadius}}
}

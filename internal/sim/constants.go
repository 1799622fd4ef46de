package sim

import "miniball/internal/geom"

// Capacities. The participant table is directly indexed by participant id,
// so ids from the host must stay below MaxParticipants.
const (
	MaxPlayers      = 16
	MaxParticipants = 16
	MaxTeams        = 2
)

// NoIndex is the sentinel for an optional player or avatar index.
const NoIndex = 0xff

// Timing. The host drives one tick every 16 ms.
const (
	TickDurationMs = 16
	TicksPerSecond = 62

	// MatchDurationInTicks is floor(62.5 ticks/s * 60 s).
	MatchDurationInTicks = 3750

	CountDownTicks  = TicksPerSecond * 3
	AfterAGoalTicks = TicksPerSecond * 4
	PostGameTicks   = TicksPerSecond * 6
)

// Pitch layout. All values are in screen units.
const (
	ScreenWidth       = 640
	ArenaSpacing      = 6
	GoalDetectWidth   = 40
	GoalSize          = 90
	ArenaLineBottom   = 20
	ArenaHeight       = 280
	ArenaLineTop      = 300
	ArenaHeightMiddle = 160

	arenaLeft  = ArenaSpacing
	arenaRight = ScreenWidth - ArenaSpacing

	goalMouthBottom = ArenaHeightMiddle - GoalSize/2
	goalMouthTop    = ArenaHeightMiddle + GoalSize/2
)

// Body sizes and kinematics.
const (
	AvatarRadius   = 20
	BallRadius     = 10
	MaxAvatarSpeed = 60

	requestedVelocityScale = 0.4

	avatarDamping      = 0.98
	avatarAccel        = 0.2
	avatarAccelCharged = 0.05

	ballDamping         = 0.988
	ballBorderDampening = 0.91

	kickCooldownTicks    = 14
	kickDribbleLockTicks = 12
	maxKickPower         = 100

	slideTackleCooldownTicks = 60
	slideTackleDuration      = 20
)

// Goal is one of the two scoring mouths. The rect extends behind the goal
// face; FacingLeft tells which face the ball must fully cross.
type Goal struct {
	OwnedByTeamIndex uint8
	Rect             geom.Rect
	FacingLeft       bool
}

var goals = [2]Goal{
	{
		OwnedByTeamIndex: 0,
		Rect: geom.Rect{
			Pos:  geom.Vec2{arenaLeft - GoalDetectWidth, goalMouthBottom},
			Size: geom.Vec2{GoalDetectWidth, GoalSize},
		},
		FacingLeft: false,
	},
	{
		OwnedByTeamIndex: 1,
		Rect: geom.Rect{
			Pos:  geom.Vec2{arenaRight, goalMouthBottom},
			Size: geom.Vec2{GoalDetectWidth, GoalSize},
		},
		FacingLeft: true,
	},
}

// borderSegments bound the pitch: the two rails and the four partials
// flanking the goal mouths. Declaration order is part of the contract;
// collisions are applied in this order.
var borderSegments = [6]geom.LineSegment{
	{A: geom.Vec2{arenaLeft, ArenaLineTop}, B: geom.Vec2{arenaRight, ArenaLineTop}},
	{A: geom.Vec2{arenaLeft, ArenaLineBottom}, B: geom.Vec2{arenaRight, ArenaLineBottom}},
	{A: geom.Vec2{arenaLeft, ArenaLineBottom}, B: geom.Vec2{arenaLeft, goalMouthBottom}},
	{A: geom.Vec2{arenaLeft, goalMouthTop}, B: geom.Vec2{arenaLeft, ArenaLineTop}},
	{A: geom.Vec2{arenaRight, ArenaLineBottom}, B: geom.Vec2{arenaRight, goalMouthBottom}},
	{A: geom.Vec2{arenaRight, goalMouthTop}, B: geom.Vec2{arenaRight, ArenaLineTop}},
}

// Goals returns the two goal mouths in declaration order.
func Goals() [2]Goal {
	return goals
}

// BorderSegments returns the six border segments in declaration order.
func BorderSegments() [6]geom.LineSegment {
	return borderSegments
}

// PitchCenter is where the ball is placed at kickoff.
func PitchCenter() geom.Vec2 {
	return geom.Vec2{ScreenWidth / 2, ArenaHeightMiddle}
}

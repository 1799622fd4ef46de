package sim

import (
	"github.com/chewxy/math32"

	"miniball/internal/geom"
)

// Avatar is a player-controlled disc on the pitch. The Request* fields are
// rewritten from the owning player's input on every tick that input is an
// InGame input, and keep their values otherwise; everything else is
// simulation state.
type Avatar struct {
	Circle            geom.Circle
	RequestedVelocity geom.Vec2
	Velocity          geom.Vec2
	VisualRotation    float32

	ControlledByPlayerIndex uint8 // player index or NoIndex
	TeamIndex               uint8

	DribbleCooldown           uint8
	KickCooldown              uint8
	KickedCounter             uint8
	SlideTackleCooldown       uint8
	SlideTackleRemainingTicks uint8
	SlideTackleRotation       float32

	RequestBuildKickPower bool
	RequestSlideTackle    bool
	KickPower             uint8
}

// spawnAvatarForPlayer appends an avatar on the player's preferred team at
// its kickoff slot and wires the player↔avatar index pair.
func (g *Game) spawnAvatarForPlayer(playerIndex uint8) {
	player := &g.Players[playerIndex]
	team := player.PreferredTeamID

	avatarIndex := g.AvatarCount
	g.AvatarCount++

	slot := 0
	for i := uint8(0); i < avatarIndex; i++ {
		if g.Avatars[i].TeamIndex == team {
			slot++
		}
	}

	g.Avatars[avatarIndex] = Avatar{
		Circle: geom.Circle{
			Center: formationPosition(team, slot),
			Radius: AvatarRadius,
		},
		VisualRotation:          teamFacing(team),
		ControlledByPlayerIndex: playerIndex,
		TeamIndex:               team,
	}
	player.ControllingAvatarIndex = avatarIndex
}

// spawnAvatarsForCommitted spawns an avatar for every committed player with
// a valid team choice that is still without one, and moves those players to
// the playing phase.
func (g *Game) spawnAvatarsForCommitted() {
	for i := uint8(0); i < g.PlayerCount; i++ {
		player := &g.Players[i]
		if player.ControllingAvatarIndex != NoIndex {
			continue
		}
		if player.Phase != PlayerPhaseCommittedToTeam || player.PreferredTeamID >= MaxTeams {
			continue
		}
		g.spawnAvatarForPlayer(i)
		player.Phase = PlayerPhasePlaying
	}
}

// despawnAvatar removes the avatar by swapping in the last one, repairing
// the moved avatar's player back-pointer.
func (g *Game) despawnAvatar(indexToRemove uint8) {
	removed := &g.Avatars[indexToRemove]
	if removed.ControlledByPlayerIndex != NoIndex {
		g.Players[removed.ControlledByPlayerIndex].ControllingAvatarIndex = NoIndex
	}

	g.AvatarCount--
	g.Avatars[indexToRemove] = g.Avatars[g.AvatarCount]

	moved := &g.Avatars[indexToRemove]
	if indexToRemove != g.AvatarCount && moved.ControlledByPlayerIndex != NoIndex {
		g.Players[moved.ControlledByPlayerIndex].ControllingAvatarIndex = indexToRemove
	}
}

// tickAvatars advances locomotion for every avatar: slide-tackle burst or
// lock-out, otherwise requested acceleration, then the speed cap, damping,
// integration, facing rotation, and border collision.
func (g *Game) tickAvatars() {
	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]

		if avatar.SlideTackleRemainingTicks > 0 {
			u := geom.UnitFromAngle(avatar.SlideTackleRotation)
			remain := float32(avatar.SlideTackleRemainingTicks) / slideTackleDuration
			avatar.Velocity = geom.AddScaled(avatar.Velocity, u, remain*remain*8)
		} else if avatar.SlideTackleCooldown > 0 {
			avatar.Velocity = geom.Vec2{}
		} else {
			accel := float32(avatarAccel)
			if avatar.KickPower > 0 {
				accel = avatarAccelCharged
			}
			avatar.Velocity = geom.AddScaled(avatar.Velocity, avatar.RequestedVelocity, accel)
		}

		if geom.SquareLength(avatar.Velocity) > MaxAvatarSpeed*MaxAvatarSpeed {
			avatar.Velocity = geom.Scale(geom.Unit(avatar.Velocity), MaxAvatarSpeed)
		}
		avatar.Velocity = geom.Scale(avatar.Velocity, avatarDamping)
		avatar.Circle.Center = avatar.Circle.Center.Add(avatar.Velocity)

		if geom.SquareLength(avatar.RequestedVelocity) > 0.001 {
			target := geom.AngleOf(avatar.RequestedVelocity)
			avatar.VisualRotation += geom.SignedAngleDiff(target, avatar.VisualRotation) * 0.1
		}

		collideAgainstBorders(&avatar.Circle, &avatar.Velocity, 10, 0)
	}
}

// tickDribble lets the first avatar in insertion order that touches the
// ball steer it toward a point just ahead of its facing. Cooldowns keep
// ticking for every avatar regardless of who wins.
func (g *Game) tickDribble() {
	dribbled := false
	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]
		if avatar.DribbleCooldown > 0 {
			avatar.DribbleCooldown--
			continue
		}
		if dribbled {
			continue
		}
		reduced := geom.Circle{Center: avatar.Circle.Center, Radius: avatar.Circle.Radius - 2}
		if !reduced.Overlap(g.Ball.Circle) {
			continue
		}

		u := geom.UnitFromAngle(avatar.VisualRotation)
		target := geom.AddScaled(avatar.Circle.Center, u, 10)
		g.Ball.Circle.Center = geom.AddScaled(g.Ball.Circle.Center, target.Sub(g.Ball.Circle.Center), 0.2)
		g.Ball.Velocity = geom.AddScaled(avatar.Velocity, u, 2)
		dribbled = true
	}
}

// tickKick accumulates kick power while the button is held and releases the
// kick when it drops. A release with the ball outside the reach circle is a
// whiff: the power drains but no cooldown is charged.
func (g *Game) tickKick() {
	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]
		if avatar.KickCooldown > 0 {
			avatar.KickCooldown--
			continue
		}

		if avatar.RequestBuildKickPower {
			if avatar.KickPower < maxKickPower {
				avatar.KickPower++
			}
			continue
		}

		if avatar.KickPower == 0 {
			continue
		}

		reach := geom.Circle{Center: avatar.Circle.Center, Radius: avatar.Circle.Radius * 2}
		if reach.Overlap(g.Ball.Circle) {
			u := geom.UnitFromAngle(avatar.VisualRotation)
			impulse := float32(avatar.KickPower)/maxKickPower*10 + 1
			g.Ball.Velocity = geom.AddScaled(avatar.Velocity, u, impulse)
			depenetrateAgainstBorders(&g.Ball.Circle)
			avatar.KickCooldown = kickCooldownTicks
			avatar.DribbleCooldown = kickDribbleLockTicks
			avatar.KickedCounter++
		}
		avatar.KickPower = 0
	}
}

// tickSlideTackleTimers runs the tackle state machine: burst ticks down
// first, then the lock-out, and only a fully idle avatar can arm a new one.
func (g *Game) tickSlideTackleTimers() {
	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]
		if avatar.SlideTackleRemainingTicks > 0 {
			avatar.SlideTackleRemainingTicks--
			continue
		}
		if avatar.SlideTackleCooldown > 0 {
			avatar.SlideTackleCooldown--
			continue
		}
		if avatar.RequestSlideTackle {
			avatar.SlideTackleCooldown = slideTackleCooldownTicks
			avatar.SlideTackleRemainingTicks = slideTackleDuration
			avatar.SlideTackleRotation = avatar.VisualRotation
		}
	}
}

func formationPosition(team uint8, slot int) geom.Vec2 {
	row := slot / 4
	col := slot % 4

	x := float32(ScreenWidth)/2 - (20 + float32(row)*50)
	if team == 1 {
		x = float32(ScreenWidth)/2 + (20 + float32(row)*50)
	}
	y := float32(ArenaHeightMiddle) + (float32(col)-1.5)*40
	return geom.Vec2{x, y}
}

func teamFacing(team uint8) float32 {
	if team == 1 {
		return -math32.Pi
	}
	return 0
}

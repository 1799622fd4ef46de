package sim

import "miniball/internal/geom"

// Ball carries the match ball's disc, velocity, and a counter of hard
// border impacts (the host uses it to trigger feedback effects).
type Ball struct {
	Circle         geom.Circle
	Velocity       geom.Vec2
	CollideCounter uint8
}

// tickBall integrates ball motion: damping, integration, border
// reflection, and the near-zero snap that keeps a settled ball bit-stable.
func (g *Game) tickBall() {
	ball := &g.Ball

	ball.Velocity = geom.Scale(ball.Velocity, ballDamping)
	ball.Circle.Center = ball.Circle.Center.Add(ball.Velocity)

	impact, _ := collideAgainstBorders(&ball.Circle, &ball.Velocity, 0, ballBorderDampening)
	if impact > 0.8 && geom.Length(ball.Velocity) > 0.7 {
		ball.CollideCounter++
	}

	if geom.SquareLength(ball.Velocity) < 0.1 {
		ball.Velocity = geom.Vec2{}
	}
}

// Package render draws debug frames of the simulation state. It exists
// for humans: the /api/frame endpoint and rollback-mismatch debugging.
// The simulation never reads anything back from it.
package render

import (
	"image"
	"image/color"
	"math"

	"github.com/chewxy/math32"
	"github.com/fogleman/gg"

	"miniball/internal/sim"
)

// canvasHeight is the drawn world height in screen units: the upper rail
// plus the same margin the lower rail keeps.
const canvasHeight = sim.ArenaLineTop + sim.ArenaLineBottom

var (
	pitchColor   = color.RGBA{24, 96, 40, 255}
	lineColor    = color.RGBA{220, 230, 220, 255}
	ballColor    = color.RGBA{245, 245, 245, 255}
	goalColor    = color.RGBA{255, 255, 255, 60}
	tackleColor  = color.RGBA{255, 210, 80, 200}
	teamColors   = [2]color.RGBA{{235, 80, 80, 255}, {80, 120, 235, 255}}
	facingColor  = color.RGBA{20, 20, 20, 255}
	chargedColor = color.RGBA{255, 160, 40, 230}
)

// Renderer rasterizes game states at a fixed scale.
type Renderer struct {
	scale float64
}

// New creates a renderer. Scale converts screen units to pixels.
func New(scale float64) *Renderer {
	if scale <= 0 {
		scale = 1
	}
	return &Renderer{scale: scale}
}

// Frame draws the whole pitch: borders, goal mouths, avatars, and ball.
func (r *Renderer) Frame(g *sim.Game) image.Image {
	w := int(float64(sim.ScreenWidth) * r.scale)
	h := int(float64(canvasHeight) * r.scale)
	dc := gg.NewContext(w, h)

	dc.SetColor(pitchColor)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	r.drawArena(dc)
	r.drawAvatars(dc, g)
	r.drawBall(dc, &g.Ball)

	return dc.Image()
}

func (r *Renderer) drawArena(dc *gg.Context) {
	dc.SetColor(goalColor)
	for _, goal := range sim.Goals() {
		x, y := r.point(goal.Rect.Pos[0], goal.Rect.Pos[1]+goal.Rect.Size[1])
		dc.DrawRectangle(x, y, float64(goal.Rect.Size[0])*r.scale, float64(goal.Rect.Size[1])*r.scale)
		dc.Fill()
	}

	dc.SetColor(lineColor)
	dc.SetLineWidth(2)
	for _, seg := range sim.BorderSegments() {
		ax, ay := r.point(seg.A[0], seg.A[1])
		bx, by := r.point(seg.B[0], seg.B[1])
		dc.DrawLine(ax, ay, bx, by)
		dc.Stroke()
	}

	// Half line.
	cx, top := r.point(sim.ScreenWidth/2, sim.ArenaLineTop)
	_, bottom := r.point(sim.ScreenWidth/2, sim.ArenaLineBottom)
	dc.DrawLine(cx, top, cx, bottom)
	dc.Stroke()
}

func (r *Renderer) drawAvatars(dc *gg.Context, g *sim.Game) {
	for i := uint8(0); i < g.AvatarCount; i++ {
		avatar := &g.Avatars[i]
		x, y := r.point(avatar.Circle.Center[0], avatar.Circle.Center[1])
		radius := float64(avatar.Circle.Radius) * r.scale

		if avatar.SlideTackleRemainingTicks > 0 {
			dc.SetColor(tackleColor)
			dc.DrawCircle(x, y, radius+4*r.scale)
			dc.Fill()
		}

		dc.SetColor(teamColors[avatar.TeamIndex%2])
		dc.DrawCircle(x, y, radius)
		dc.Fill()

		dc.SetColor(lineColor)
		dc.SetLineWidth(1.5)
		dc.DrawCircle(x, y, radius)
		dc.Stroke()

		// Facing tick. The simulation's y axis points up, so the
		// rotation flips sign on the flipped canvas.
		fx := x + radius*cos(avatar.VisualRotation)
		fy := y - radius*sin(avatar.VisualRotation)
		dc.SetColor(facingColor)
		dc.SetLineWidth(2)
		dc.DrawLine(x, y, fx, fy)
		dc.Stroke()

		if avatar.KickPower > 0 {
			dc.SetColor(chargedColor)
			dc.DrawArc(x, y, radius+3*r.scale, 0, float64(avatar.KickPower)/100*2*math.Pi)
			dc.Stroke()
		}
	}
}

func (r *Renderer) drawBall(dc *gg.Context, ball *sim.Ball) {
	x, y := r.point(ball.Circle.Center[0], ball.Circle.Center[1])
	dc.SetColor(ballColor)
	dc.DrawCircle(x, y, float64(ball.Circle.Radius)*r.scale)
	dc.Fill()
	dc.SetColor(facingColor)
	dc.SetLineWidth(1)
	dc.DrawCircle(x, y, float64(ball.Circle.Radius)*r.scale)
	dc.Stroke()
}

// point converts simulation coordinates (y up) to canvas pixels (y down).
func (r *Renderer) point(x, y float32) (float64, float64) {
	return float64(x) * r.scale, (float64(canvasHeight) - float64(y)) * r.scale
}

func cos(a float32) float64 { return float64(math32.Cos(a)) }
func sin(a float32) float64 { return float64(math32.Sin(a)) }

package sim

import (
	"github.com/chewxy/math32"

	"miniball/internal/geom"
)

// collisionEpsilon pushes a resolved circle slightly past the contact
// point so the same segment cannot re-trigger within the frame.
const collisionEpsilon = 0.1

// collideAgainstBorders resolves a moving circle against all six border
// segments in declaration order. safeDistance inflates the tested radius;
// dampening scales the reflected velocity. It returns the largest impact
// magnitude |v·n| observed and the number of segments hit.
func collideAgainstBorders(circle *geom.Circle, velocity *geom.Vec2, safeDistance, dampening float32) (float32, int) {
	maxImpact := float32(0)
	collisions := 0

	for i := range borderSegments {
		probe := geom.Circle{Center: circle.Center, Radius: circle.Radius + safeDistance}
		collision := geom.SegmentCircleIntersect(borderSegments[i], probe)
		if collision.Depth <= 0 {
			continue
		}

		impact := math32.Abs(velocity.Dot(collision.Normal))
		if impact > maxImpact {
			maxImpact = impact
		}

		*velocity = geom.Scale(geom.Reflect(*velocity, collision.Normal), dampening)
		circle.Center = geom.AddScaled(circle.Center, collision.Normal, collision.Depth+collisionEpsilon)
		collisions++
	}

	return maxImpact, collisions
}

// depenetrateAgainstBorders translates a circle out of any border it
// penetrates without touching its velocity. Used right after a kick so the
// impulse survives contact with a rail.
func depenetrateAgainstBorders(circle *geom.Circle) {
	for i := range borderSegments {
		collision := geom.SegmentCircleIntersect(borderSegments[i], *circle)
		if collision.Depth <= 0 {
			continue
		}
		circle.Center = geom.AddScaled(circle.Center, collision.Normal, collision.Depth+collisionEpsilon)
	}
}

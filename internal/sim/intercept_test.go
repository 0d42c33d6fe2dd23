package sim

import (
	"math"
	"testing"

	"github.com/skyraid/server/internal/vmath"
)

func TestInterceptStationaryTarget(t *testing.T) {
	target := vmath.V(100, 0)
	point, ok := SolveIntercept(vmath.V(0, 0), target, vmath.Vec2{}, 50)
	if !ok {
		t.Fatal("no solution for a stationary target")
	}
	if vmath.Dist(point, target) > 1e-9 {
		t.Fatalf("lead point %v, want the target itself", point)
	}
}

func TestInterceptLeadsMovingTarget(t *testing.T) {
	from := vmath.V(0, 0)
	targetPos := vmath.V(100, 0)
	targetVel := vmath.V(0, 30)
	speed := 60.0

	point, ok := SolveIntercept(from, targetPos, targetVel, speed)
	if !ok {
		t.Fatal("no solution")
	}
	if point.Y <= 0 {
		t.Fatalf("lead point %v does not anticipate the motion", point)
	}
	// The chaser and target arrive at the same moment.
	tChase := vmath.Dist(from, point) / speed
	tTarget := vmath.Dist(targetPos, point) / targetVel.Len()
	if math.Abs(tChase-tTarget) > 1e-6 {
		t.Fatalf("arrival times differ: %v vs %v", tChase, tTarget)
	}
}

func TestInterceptUncatchableTarget(t *testing.T) {
	// Target directly flees faster than the chaser can fly.
	point, ok := SolveIntercept(vmath.V(0, 0), vmath.V(100, 0), vmath.V(200, 0), 50)
	if ok {
		t.Fatal("claimed a solution against a faster fleeing target")
	}
	if point != vmath.V(100, 0) {
		t.Fatalf("fallback point %v, want the current position", point)
	}
}

func TestInterceptEqualSpeeds(t *testing.T) {
	// Head-on at matched speed still has a midpoint solution.
	point, ok := SolveIntercept(vmath.V(0, 0), vmath.V(100, 0), vmath.V(-50, 0), 50)
	if !ok {
		t.Fatal("no solution for a head-on closer")
	}
	if math.Abs(point.X-50) > 1e-6 {
		t.Fatalf("meet point %v, want x = 50", point)
	}
}

package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

var worldUp = core.NewVec3(0, 1, 0)

// Camera generates primary rays through a screen plane placed FocalDistance
// along the view direction. The plane spans ±FocalDistance/2 vertically and
// the same scaled by the aspect ratio horizontally.
//
// When the view direction is parallel to world up the right vector is zero
// and every generated ray collapses onto the view axis. Poses like that are
// not corrected.
type Camera struct {
	Origin        core.Vec3
	Target        core.Vec3
	FocalDistance float64
	LensSize      float64
	Width         int
	Height        int

	direction core.Vec3
	right     core.Vec3
	up        core.Vec3

	// Screen plane corners: p1 top-left, p2 top-right, p3 bottom-left
	p1, p2, p3 core.Vec3
}

// NewCamera creates a camera for pose rendering an image of width x height
func NewCamera(pose scene.CameraPose, width, height int) *Camera {
	c := &Camera{
		Origin:        pose.Origin,
		Target:        pose.Target,
		FocalDistance: pose.FocalDistance,
		LensSize:      pose.LensSize,
		Width:         width,
		Height:        height,
	}
	c.Update()
	return c
}

// Update recomputes the camera basis and screen corners. It must be called
// after any exported field changes.
func (c *Camera) Update() {
	c.direction = c.Target.Subtract(c.Origin).Normalize()
	c.right = worldUp.Cross(c.direction)
	c.up = c.direction.Cross(c.right)

	aspect := 1.0
	if c.Width > 0 && c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}

	center := c.Center()
	halfW := c.right.Multiply(0.5 * c.FocalDistance * aspect)
	halfH := c.up.Multiply(0.5 * c.FocalDistance)

	c.p1 = center.Subtract(halfW).Add(halfH)
	c.p2 = center.Add(halfW).Add(halfH)
	c.p3 = center.Subtract(halfW).Subtract(halfH)
}

// Center returns the middle of the screen plane
func (c *Camera) Center() core.Vec3 {
	return c.Origin.Add(c.direction.Multiply(c.FocalDistance))
}

// Direction returns the unit view direction
func (c *Camera) Direction() core.Vec3 { return c.direction }

// Right returns the camera right vector
func (c *Camera) Right() core.Vec3 { return c.right }

// Up returns the camera up vector
func (c *Camera) Up() core.Vec3 { return c.up }

// Corners returns the top-left, top-right and bottom-left screen corners
func (c *Camera) Corners() (p1, p2, p3 core.Vec3) {
	return c.p1, c.p2, c.p3
}

// Pose returns the camera's current pose
func (c *Camera) Pose() scene.CameraPose {
	return scene.CameraPose{
		Origin:        c.Origin,
		Target:        c.Target,
		FocalDistance: c.FocalDistance,
		LensSize:      c.LensSize,
	}
}

// Resize changes the output resolution and recomputes the screen plane
func (c *Camera) Resize(width, height int) {
	c.Width, c.Height = width, height
	c.Update()
}

// Generate returns the ray through screen coordinates (u, v) in [0,1]²,
// with (0,0) at the top-left. A positive LensSize offsets the origin within
// the lens disk; sampler may be nil when the lens size is zero.
func (c *Camera) Generate(u, v float64, sampler core.Sampler) core.Ray {
	target := c.p1.Add(c.p2.Subtract(c.p1).Multiply(u)).Add(c.p3.Subtract(c.p1).Multiply(v))

	origin := c.Origin
	if c.LensSize > 0 && sampler != nil {
		disk := core.SamplePointInUnitDisk(sampler.Get2D())
		origin = origin.Add(c.right.Multiply(disk.X * c.LensSize)).Add(c.up.Multiply(disk.Y * c.LensSize))
	}

	return core.NewRay(origin, target.Subtract(origin).Normalize())
}

// PixelRay returns a ray through pixel (x, y). With jitter the sample
// position is uniform inside the pixel, otherwise it is the pixel center.
func (c *Camera) PixelRay(x, y int, sampler core.Sampler, jitter bool) core.Ray {
	dx, dy := 0.5, 0.5
	if jitter && sampler != nil {
		offset := sampler.Get2D()
		dx, dy = offset.X, offset.Y
	}
	u := (float64(x) + dx) / float64(c.Width)
	v := (float64(y) + dy) / float64(c.Height)
	return c.Generate(u, v, sampler)
}

// Move translates origin and target by delta
func (c *Camera) Move(delta core.Vec3) {
	c.Origin = c.Origin.Add(delta)
	c.Target = c.Target.Add(delta)
	c.Update()
}

// Rotate turns the target around the origin by yaw radians about world up,
// then by pitch radians about the camera right vector
func (c *Camera) Rotate(yaw, pitch float64) {
	view := toMgl(c.Target.Subtract(c.Origin))

	if yaw != 0 {
		view = mgl64.QuatRotate(yaw, toMgl(worldUp)).Rotate(view)
	}
	if pitch != 0 && !c.right.IsZero() {
		view = mgl64.QuatRotate(pitch, toMgl(c.right.Normalize())).Rotate(view)
	}

	c.Target = c.Origin.Add(fromMgl(view))
	c.Update()
}

func toMgl(v core.Vec3) mgl64.Vec3   { return mgl64.Vec3{v.X, v.Y, v.Z} }
func fromMgl(v mgl64.Vec3) core.Vec3 { return core.NewVec3(v[0], v[1], v[2]) }

// Action is a discrete camera pose change
type Action int

const (
	MoveForward Action = iota
	MoveBack
	StrafeLeft
	StrafeRight
	Raise
	Lower
	TurnLeft
	TurnRight
	TurnUp
	TurnDown
)

// Step sizes for Apply
const (
	MoveStep   = 0.1
	RotateStep = 2 * math.Pi / 180
)

var actionNames = map[Action]string{
	MoveForward: "forward",
	MoveBack:    "back",
	StrafeLeft:  "left",
	StrafeRight: "right",
	Raise:       "up",
	Lower:       "down",
	TurnLeft:    "turn-left",
	TurnRight:   "turn-right",
	TurnUp:      "turn-up",
	TurnDown:    "turn-down",
}

// String returns the action name accepted by ParseAction
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps an action name to an Action
func ParseAction(name string) (Action, error) {
	for action, actionName := range actionNames {
		if actionName == name {
			return action, nil
		}
	}
	return 0, fmt.Errorf("renderer: unknown camera action %q", name)
}

// Apply performs one step of action
func (c *Camera) Apply(action Action) {
	// Horizontal movement follows the view direction projected onto the ground
	forward := core.NewVec3(c.direction.X, 0, c.direction.Z).Normalize()
	right := c.right.Normalize()

	switch action {
	case MoveForward:
		c.Move(forward.Multiply(MoveStep))
	case MoveBack:
		c.Move(forward.Multiply(-MoveStep))
	case StrafeLeft:
		c.Move(right.Multiply(-MoveStep))
	case StrafeRight:
		c.Move(right.Multiply(MoveStep))
	case Raise:
		c.Move(worldUp.Multiply(MoveStep))
	case Lower:
		c.Move(worldUp.Multiply(-MoveStep))
	case TurnLeft:
		c.Rotate(-RotateStep, 0)
	case TurnRight:
		c.Rotate(RotateStep, 0)
	case TurnUp:
		c.Rotate(0, -RotateStep)
	case TurnDown:
		c.Rotate(0, RotateStep)
	}
}

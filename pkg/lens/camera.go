package lens

import (
	"github.com/go-gl/mathgl/mgl64"
)

// CameraConfig holds camera configuration parameters
type CameraConfig struct {
	Center mgl64.Vec3 // camera world position
	LookAt mgl64.Vec3 // point the camera looks at
	Up     mgl64.Vec3 // up direction
	VFov   float64    // vertical field of view in degrees
	Width  int        // viewport width in pixels
	Height int        // viewport height in pixels
}

// Camera holds the per-frame view state: world position plus mutually
// consistent view/projection matrices and their inverses. The four matrices
// are always recomputed together.
type Camera struct {
	config  CameraConfig
	view    mgl64.Mat4
	proj    mgl64.Mat4
	invView mgl64.Mat4
	invProj mgl64.Mat4
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{config: config}
	c.recompute()
	return c
}

func (c *Camera) recompute() {
	c.view = mgl64.LookAtV(c.config.Center, c.config.LookAt, c.config.Up)
	c.proj = mgl64.Perspective(mgl64.DegToRad(c.config.VFov), c.Aspect(), 0.1, 1000.0)
	c.invView = c.view.Inv()
	c.invProj = c.proj.Inv()
}

// SetCenter moves the camera and recomputes all matrices
func (c *Camera) SetCenter(center mgl64.Vec3) {
	c.config.Center = center
	c.recompute()
}

// SetLookAt retargets the camera and recomputes all matrices
func (c *Camera) SetLookAt(lookAt mgl64.Vec3) {
	c.config.LookAt = lookAt
	c.recompute()
}

// Position returns the camera's world position
func (c *Camera) Position() mgl64.Vec3 {
	return c.config.Center
}

// Resolution returns the viewport size in pixels
func (c *Camera) Resolution() (int, int) {
	return c.config.Width, c.config.Height
}

// Aspect returns the viewport width/height ratio
func (c *Camera) Aspect() float64 {
	return float64(c.config.Width) / float64(c.config.Height)
}

// Forward returns the camera's view direction
func (c *Camera) Forward() mgl64.Vec3 {
	return c.config.LookAt.Sub(c.config.Center).Normalize()
}

// Right returns the camera's world-space right vector
func (c *Camera) Right() mgl64.Vec3 {
	return c.invView.Col(0).Vec3().Normalize()
}

// RayDirection reconstructs the world-space ray direction for a screen UV in
// [0,1]²: NDC conversion, inverse projection with perspective divide, then
// inverse view applied to the direction.
func (c *Camera) RayDirection(uv mgl64.Vec2) mgl64.Vec3 {
	ndc := uv.Mul(2.0).Sub(mgl64.Vec2{1, 1})
	clip := mgl64.Vec4{ndc.X(), ndc.Y(), -1, 1}

	eye := c.invProj.Mul4x1(clip)
	if eye.W() != 0 {
		eye = eye.Mul(1.0 / eye.W())
	}

	world := c.invView.Mul4x1(mgl64.Vec4{eye.X(), eye.Y(), eye.Z(), 0})
	return world.Vec3().Normalize()
}

// ProjectToUV projects a world point into screen UV coordinates. The second
// return value is false when the point is behind the camera and the
// projection is undefined.
func (c *Camera) ProjectToUV(p mgl64.Vec3) (mgl64.Vec2, bool) {
	clip := c.proj.Mul4(c.view).Mul4x1(p.Vec4(1))
	if clip.W() <= epsilon {
		return mgl64.Vec2{}, false
	}
	ndc := clip.Mul(1.0 / clip.W())
	return mgl64.Vec2{ndc.X()*0.5 + 0.5, ndc.Y()*0.5 + 0.5}, true
}

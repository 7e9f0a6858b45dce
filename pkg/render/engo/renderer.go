// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-hoverslam/pkg/guidance"
	"github.com/opd-ai/go-hoverslam/pkg/physics"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
	"github.com/opd-ai/go-hoverslam/pkg/world"
)

// Body proportions relative to the rocket height.
const (
	bodyWidthRatio  = 0.2
	plumeLenRatio   = 0.3
	plumeWidthRatio = 0.6 // of body width
	rcsSizeRatio    = 0.5 // of body width
)

// sprite is a coloured rectangle (or texture) managed by the render system.
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

func newSprite(d common.Drawable, c color.Color) *sprite {
	return &sprite{
		BasicEntity:     ecs.NewBasic(),
		RenderComponent: common.RenderComponent{Drawable: d, Color: c},
	}
}

func (s *sprite) place(r rect) {
	s.Position = engo.Point{X: r.X, Y: r.Y}
	s.Width = r.W
	s.Height = r.H
	s.Rotation = r.Rotation
}

type rocketSprites struct {
	body, plume, rcsLeft, rcsRight *sprite
}

func (rs *rocketSprites) all() []*sprite {
	return []*sprite{rs.plume, rs.body, rs.rcsLeft, rs.rcsRight}
}

// EngoRenderer implements render.Renderer with engo sprites. Sprites are
// created the first time a body is seen and removed once a frame passes
// without it.
type EngoRenderer struct {
	world        *ecs.World
	renderSystem *common.RenderSystem
	assets       *AssetManager

	ground    *sprite
	rockets   map[uint64]*rocketSprites
	seen      map[uint64]bool
	telemetry guidance.Telemetry
}

// NewEngoRenderer creates a renderer for world.
func NewEngoRenderer(world *ecs.World) *EngoRenderer {
	return &EngoRenderer{
		world:   world,
		rockets: make(map[uint64]*rocketSprites),
		seen:    make(map[uint64]bool),
		assets:  NewAssetManager(),
	}
}

// Initialize finds the world's render system, adding one if needed, and
// loads the textures.
func (r *EngoRenderer) Initialize() error {
	for _, sys := range r.world.Systems() {
		if rs, ok := sys.(*common.RenderSystem); ok {
			r.renderSystem = rs
		}
	}
	if r.renderSystem == nil {
		r.renderSystem = &common.RenderSystem{}
		r.world.AddSystem(r.renderSystem)
	}
	return r.assets.LoadAssets()
}

// Telemetry returns the last telemetry passed to RenderTelemetry.
func (r *EngoRenderer) Telemetry() guidance.Telemetry {
	return r.telemetry
}

func (r *EngoRenderer) add(s *sprite) {
	r.renderSystem.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
}

// Clear implements render.Renderer.
func (r *EngoRenderer) Clear() {
	clear(r.seen)
}

// Present implements render.Renderer. Bodies not drawn this frame lose their
// sprites.
func (r *EngoRenderer) Present() {
	for id, rs := range r.rockets {
		if r.seen[id] {
			continue
		}
		for _, s := range rs.all() {
			r.renderSystem.Remove(s.BasicEntity)
		}
		delete(r.rockets, id)
	}
}

// RenderGround implements render.Renderer.
func (r *EngoRenderer) RenderGround(groundY, width float64) {
	if r.ground == nil {
		r.ground = newSprite(common.Rectangle{}, groundColor)
		r.ground.SetZIndex(1)
		r.add(r.ground)
	}
	r.ground.place(groundRect(groundY, width, float64(engo.GameHeight())))
}

// RenderRocket implements render.Renderer.
func (r *EngoRenderer) RenderRocket(body world.BodyState) {
	rs, ok := r.rockets[body.ID]
	if !ok {
		rs = &rocketSprites{
			body:     newSprite(r.assets.RocketSprite(), bodyColor),
			plume:    newSprite(common.Rectangle{}, plumeColor),
			rcsLeft:  newSprite(common.Rectangle{}, rcsColor),
			rcsRight: newSprite(common.Rectangle{}, rcsColor),
		}
		for i, s := range rs.all() {
			s.SetZIndex(float32(2 + i))
			r.add(s)
		}
		r.rockets[body.ID] = rs
	}
	r.seen[body.ID] = true

	l := layoutRocket(body)
	rs.body.place(l.body)
	rs.body.Scale = r.assets.RocketScale(l.body.W, l.body.H)
	rs.body.Color = bodyColor
	if body.Status == rocket.Crashed {
		rs.body.Color = wreckColor
	}

	rs.plume.place(l.plume)
	rs.plume.Hidden = !l.plumeOn
	rs.rcsLeft.place(l.rcsLeft)
	rs.rcsLeft.Hidden = !body.RCS.Left
	rs.rcsRight.place(l.rcsRight)
	rs.rcsRight.Hidden = !body.RCS.Right
}

// RenderTelemetry implements render.Renderer. The HUD reads it back through
// Telemetry.
func (r *EngoRenderer) RenderTelemetry(t guidance.Telemetry) {
	r.telemetry = t
}

// rect is a space component placement: top-left corner, size and clockwise
// rotation in degrees about that corner.
type rect struct {
	X, Y, W, H float32
	Rotation   float32
}

type rocketLayout struct {
	body, plume, rcsLeft, rcsRight rect
	plumeOn                        bool
}

// displayRotation converts a heading (90 is upright, counter-clockwise
// positive) to engo's clockwise sprite rotation.
func displayRotation(direction float64) float64 {
	return physics.NormalizeDegrees(rocket.Upright - direction)
}

// rotatedRect places a w×h rectangle centred on (cx, cy) and rotated rot
// degrees clockwise. Engo rotates about the top-left corner, so the corner
// is moved to where the rotation leaves it.
func rotatedRect(cx, cy, w, h, rot float64) rect {
	rad := physics.Radians(rot)
	cos, sin := math.Cos(rad), math.Sin(rad)
	dx, dy := -w/2, -h/2
	return rect{
		X:        float32(cx + dx*cos - dy*sin),
		Y:        float32(cy + dx*sin + dy*cos),
		W:        float32(w),
		H:        float32(h),
		Rotation: float32(rot),
	}
}

func groundRect(groundY, width, windowHeight float64) rect {
	h := windowHeight - groundY
	if h < 0 {
		h = 0
	}
	return rect{Y: float32(groundY), W: float32(width), H: float32(h)}
}

// layoutRocket computes every sprite placement for one body.
func layoutRocket(body world.BodyState) rocketLayout {
	rad := physics.Radians(body.Direction)
	axis := physics.Vector2D{X: math.Cos(rad), Y: -math.Sin(rad)}
	// left of the nose when looking along the axis
	side := physics.Vector2D{X: axis.Y, Y: -axis.X}
	rot := displayRotation(body.Direction)

	h := body.Height
	w := h * bodyWidthRatio
	centre := physics.Vector2D{X: body.Position.X, Y: body.Position.Y + h/2}

	plumeLen := h * plumeLenRatio
	plumeCentre := centre.Sub(axis.Scale(h/2 + plumeLen/2))

	rcs := w * rcsSizeRatio
	nose := centre.Add(axis.Scale(h/2 - rcs/2))
	left := nose.Add(side.Scale(w/2 + rcs/2))
	right := nose.Sub(side.Scale(w/2 + rcs/2))

	lit := false
	for _, on := range body.Engines {
		lit = lit || on
	}

	return rocketLayout{
		body:     rotatedRect(centre.X, centre.Y, w, h, rot),
		plume:    rotatedRect(plumeCentre.X, plumeCentre.Y, w*plumeWidthRatio, plumeLen, rot),
		rcsLeft:  rotatedRect(left.X, left.Y, rcs, rcs, rot),
		rcsRight: rotatedRect(right.X, right.Y, rcs, rcs, rot),
		plumeOn:  lit,
	}
}

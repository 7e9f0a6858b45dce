// pkg/render/engo/hud.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo/common"
)

// HUD geometry in screen units.
const (
	hudMargin    = 10
	hudBarWidth  = 14
	hudBarHeight = 160
	hudBarGap    = 8
	hudMarkerH   = 2
)

// HUDState is what the HUD shows for one frame.
type HUDState struct {
	Altitude      float64
	MaxAltitude   float64
	BurnAltitude  float64
	ShouldBurn    bool
	FuelFraction  float64
	VerticalSpeed float64
	LateralSpeed  float64
	MaxSpeed      float64
	// SafeSpeed is the landing speed limit; faster vertical speeds are
	// shown in the warning colour.
	SafeSpeed float64
	// Outcome is nil while flying.
	Outcome *bool
	Paused  bool
}

type bar struct {
	frame, fill rect
	color       color.Color
}

type hudLayout struct {
	altitude, fuel, vertical, lateral bar
	burnMarker                        rect
	status                            rect
	statusColor                       color.Color
	showStatus                        bool
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func fraction(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return clamp01(v / limit)
}

// verticalBar fills a frame at column x from the bottom by frac.
func verticalBar(x float32, frac float64, c color.Color) bar {
	frame := rect{X: x, Y: hudMargin, W: hudBarWidth, H: hudBarHeight}
	h := float32(frac) * hudBarHeight
	return bar{
		frame: frame,
		fill:  rect{X: x, Y: hudMargin + hudBarHeight - h, W: hudBarWidth, H: h},
		color: c,
	}
}

// layoutHUD computes the bar placements. Bars sit in a row at the top-left
// corner: altitude, fuel, vertical speed, lateral speed, then a status lamp.
func layoutHUD(s HUDState) hudLayout {
	col := func(i int) float32 {
		return float32(hudMargin + i*(hudBarWidth+hudBarGap))
	}

	altColor := color.Color(hudFillColor)
	if s.ShouldBurn {
		altColor = burnMarkerColor
	}
	vColor := color.Color(hudFillColor)
	if s.SafeSpeed > 0 && s.VerticalSpeed >= s.SafeSpeed {
		vColor = hudWarnColor
	}

	l := hudLayout{
		altitude: verticalBar(col(0), fraction(s.Altitude, s.MaxAltitude), altColor),
		fuel:     verticalBar(col(1), clamp01(s.FuelFraction), hudFillColor),
		vertical: verticalBar(col(2), fraction(math.Abs(s.VerticalSpeed), s.MaxSpeed), vColor),
		lateral:  verticalBar(col(3), fraction(math.Abs(s.LateralSpeed), s.MaxSpeed), hudFillColor),
	}

	markerY := hudMargin + hudBarHeight - float32(fraction(s.BurnAltitude, s.MaxAltitude))*hudBarHeight
	l.burnMarker = rect{X: col(0) - 2, Y: markerY - hudMarkerH/2, W: hudBarWidth + 4, H: hudMarkerH}

	l.status = rect{X: col(4), Y: hudMargin, W: hudBarWidth, H: hudBarWidth}
	switch {
	case s.Outcome != nil && *s.Outcome:
		l.statusColor, l.showStatus = hudFillColor, true
	case s.Outcome != nil:
		l.statusColor, l.showStatus = hudWarnColor, true
	case s.Paused:
		l.statusColor, l.showStatus = rcsColor, true
	}
	return l
}

// HUDSystem draws the indicator bars. It pulls a fresh HUDState from its
// source every frame.
type HUDSystem struct {
	source func() HUDState

	frames     [4]*sprite
	fills      [4]*sprite
	burnMarker *sprite
	status     *sprite
}

// NewHUDSystem creates a HUD fed by source.
func NewHUDSystem(source func() HUDState) *HUDSystem {
	hud := &HUDSystem{source: source}
	for i := range hud.frames {
		hud.frames[i] = newSprite(common.Rectangle{}, hudFrameColor)
		hud.fills[i] = newSprite(common.Rectangle{}, hudFillColor)
	}
	hud.burnMarker = newSprite(common.Rectangle{}, burnMarkerColor)
	hud.status = newSprite(common.Rectangle{}, hudFillColor)
	return hud
}

func (hud *HUDSystem) sprites() []*sprite {
	out := make([]*sprite, 0, 10)
	out = append(out, hud.frames[:]...)
	out = append(out, hud.fills[:]...)
	return append(out, hud.burnMarker, hud.status)
}

// AddTo registers the HUD sprites with rs, above the scene.
func (hud *HUDSystem) AddTo(rs *common.RenderSystem) {
	for i, s := range hud.sprites() {
		s.SetZIndex(float32(100 + i))
		s.SetShader(common.HUDShader)
		rs.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update refreshes every bar from the source.
func (hud *HUDSystem) Update(dt float32) {
	if hud.source == nil {
		return
	}
	l := layoutHUD(hud.source())

	for i, b := range []bar{l.altitude, l.fuel, l.vertical, l.lateral} {
		hud.frames[i].place(b.frame)
		hud.fills[i].place(b.fill)
		hud.fills[i].Color = b.color
	}
	hud.burnMarker.place(l.burnMarker)
	hud.status.place(l.status)
	hud.status.Hidden = !l.showStatus
	if l.showStatus {
		hud.status.Color = l.statusColor
	}
}

// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
)

// Palette
var (
	skyColor        = color.RGBA{18, 24, 38, 255}
	groundColor     = color.RGBA{92, 104, 84, 255}
	bodyColor       = color.RGBA{235, 235, 240, 255}
	wreckColor      = color.RGBA{200, 60, 50, 255}
	plumeColor      = color.RGBA{255, 150, 40, 255}
	rcsColor        = color.RGBA{140, 220, 255, 255}
	hudFrameColor   = color.RGBA{60, 70, 90, 200}
	hudFillColor    = color.RGBA{120, 200, 120, 255}
	hudWarnColor    = color.RGBA{230, 90, 70, 255}
	burnMarkerColor = color.RGBA{255, 150, 40, 255}
)

// rocketPattern is the body sprite, nose up. 1 is hull, 2 is window.
var rocketPattern = [][]int{
	{0, 0, 0, 1, 1, 0, 0, 0},
	{0, 0, 1, 1, 1, 1, 0, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 2, 2, 1, 1, 0},
	{0, 1, 1, 2, 2, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 0},
	{1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 1, 1},
	{1, 1, 0, 0, 0, 0, 1, 1},
	{1, 0, 0, 0, 0, 0, 0, 1},
}

const (
	rocketSpriteWidth  = 8
	rocketSpriteHeight = 24
)

var windowColor = color.RGBA{60, 110, 170, 255}

// AssetManager builds the procedural textures. Textures need a GL context,
// so until LoadAssets runs every getter falls back to a plain rectangle.
type AssetManager struct {
	rocketSprite common.Drawable
}

// NewAssetManager creates an empty asset manager.
func NewAssetManager() *AssetManager {
	return &AssetManager{}
}

// LoadAssets uploads the rocket texture.
func (am *AssetManager) LoadAssets() error {
	img := createBaseImage(rocketSpriteWidth, rocketSpriteHeight)
	drawPatternOnImage(img, rocketPattern, rocketSpriteWidth, rocketSpriteHeight)
	am.rocketSprite = convertToEngoTexture(img)
	return nil
}

// RocketSprite returns the hull drawable.
func (am *AssetManager) RocketSprite() common.Drawable {
	if am.rocketSprite == nil {
		return common.Rectangle{}
	}
	return am.rocketSprite
}

// RocketScale stretches the hull drawable over a width×height body. A plain
// rectangle already fills its space component.
func (am *AssetManager) RocketScale(width, height float32) engo.Point {
	if am.rocketSprite == nil {
		return engo.Point{X: 1, Y: 1}
	}
	return spriteScale(width, height, rocketSpriteWidth, rocketSpriteHeight)
}

func spriteScale(width, height float32, texWidth, texHeight int) engo.Point {
	return engo.Point{X: width / float32(texWidth), Y: height / float32(texHeight)}
}

// createBaseImage creates a transparent RGBA image with the specified dimensions.
func createBaseImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{0, 0, 0, 0}}, image.Point{}, draw.Src)
	return img
}

// drawPatternOnImage draws a 2D pixel pattern onto the provided RGBA image.
// The hull is white so the render component colour can tint it.
func drawPatternOnImage(img *image.RGBA, pattern [][]int, width, height int) {
	for y, row := range pattern {
		if y >= height {
			break
		}
		for x, pixel := range row {
			if x >= width {
				break
			}
			switch pixel {
			case 1:
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			case 2:
				img.Set(x, y, windowColor)
			}
		}
	}
}

// convertToEngoTexture converts an RGBA image to an Engo-compatible texture.
func convertToEngoTexture(img *image.RGBA) common.Drawable {
	bounds := img.Bounds()
	nrgbaImg := image.NewNRGBA(bounds)
	draw.Draw(nrgbaImg, bounds, img, bounds.Min, draw.Src)

	texture := common.NewImageObject(nrgbaImg)
	return common.NewTextureSingle(texture)
}

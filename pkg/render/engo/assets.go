// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-orrery/pkg/render"
)

// SpriteKind is the shape of a generated sprite.
type SpriteKind int

const (
	SpriteDisc SpriteKind = iota
	SpriteRing
	SpriteShip
	SpriteAnomaly
)

// spriteSize is the edge length of generated sprites in pixels. Sprites are
// scaled to their on-screen size when drawn.
const spriteSize = 64

// fallbackTint is used when a tint string cannot be parsed.
var fallbackTint = color.NRGBA{R: 0x8a, G: 0x8f, B: 0x99, A: 0xff}

type spriteKey struct {
	kind SpriteKind
	tint string
}

// AssetManager generates and caches tinted sprites. Textures come from the
// resource registry as tints, so a missing texture only changes colour.
type AssetManager struct {
	palette   render.Palette
	images    map[spriteKey]*image.NRGBA
	drawables map[spriteKey]common.Drawable

	// upload turns an image into a GPU texture. Replaced in tests.
	upload func(*image.NRGBA) common.Drawable
}

// NewAssetManager creates an asset manager. palette may be nil.
func NewAssetManager(palette render.Palette) *AssetManager {
	return &AssetManager{
		palette:   palette,
		images:    make(map[spriteKey]*image.NRGBA),
		drawables: make(map[spriteKey]common.Drawable),
		upload: func(img *image.NRGBA) common.Drawable {
			return common.NewTextureSingle(common.NewImageObject(img))
		},
	}
}

// Tint returns the colour for a texture key, or fallback when there is no
// palette or key.
func (am *AssetManager) Tint(key, fallback string) string {
	if am.palette == nil || key == "" {
		return fallback
	}
	return am.palette.Appearance(key).Tint
}

// Drawable returns the uploaded sprite for kind and tint, creating it on
// first use. It needs a GL context.
func (am *AssetManager) Drawable(kind SpriteKind, tint string) common.Drawable {
	key := spriteKey{kind, tint}
	if d, ok := am.drawables[key]; ok {
		return d
	}
	d := am.upload(am.Image(kind, tint))
	am.drawables[key] = d
	return d
}

// Image returns the sprite bitmap for kind and tint.
func (am *AssetManager) Image(kind SpriteKind, tint string) *image.NRGBA {
	key := spriteKey{kind, tint}
	if img, ok := am.images[key]; ok {
		return img
	}
	img := drawSprite(kind, ParseTint(tint))
	am.images[key] = img
	return img
}

// ParseTint parses #rrggbb, falling back to a neutral grey.
func ParseTint(tint string) color.NRGBA {
	hex := strings.TrimPrefix(tint, "#")
	if len(hex) != 6 {
		return fallbackTint
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallbackTint
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func drawSprite(kind SpriteKind, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, spriteSize, spriteSize))
	const mid = spriteSize / 2.0

	for y := 0; y < spriteSize; y++ {
		for x := 0; x < spriteSize; x++ {
			dx, dy := float64(x)+0.5-mid, float64(y)+0.5-mid
			r := math.Hypot(dx, dy) / mid

			var alpha float64
			switch kind {
			case SpriteDisc:
				if r <= 1 {
					alpha = 1
				}
			case SpriteRing:
				// Band between the inner and outer ring scales of 1.4/2.4.
				if r >= 1.4/2.4 && r <= 1 {
					alpha = 0.6
				}
			case SpriteAnomaly:
				// Soft glow.
				if r <= 1 {
					alpha = 1 - r
				}
			case SpriteShip:
				// Arrowhead pointing right.
				u := (float64(x) + 0.5) / spriteSize
				if math.Abs(dy)/mid <= 1-u {
					alpha = 1
				}
			}
			if alpha > 0 {
				img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha * 255)})
			}
		}
	}
	return img
}

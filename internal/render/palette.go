package render

import (
	"emoji-dialogue/internal/asset"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colours the stage draws with. Emoji are painted by the
// terminal in their own colours, so greyed speakers are shown by tinting the
// frame and nameplate and dimming the glyph rather than recolouring it.
type Palette struct {
	Text   colorful.Color
	Name   colorful.Color
	Frame  colorful.Color
	Base   colorful.Color // screen background under a translucent backdrop
	Shadow colorful.Color // what greyed colours are pulled toward
}

// DefaultPalette is used when the host does not configure colours.
func DefaultPalette() Palette {
	return Palette{
		Text:   colorful.Color{R: 0.91, G: 0.91, B: 0.91},
		Name:   colorful.Color{R: 1, G: 0.82, B: 0.4},
		Frame:  colorful.Color{R: 0.55, G: 0.6, B: 0.75},
		Base:   colorful.Color{R: 0.1, G: 0.1, B: 0.13},
		Shadow: colorful.Color{R: 0.35, G: 0.35, B: 0.35},
	}
}

// Greyed desaturates c toward the shadow tone.
func (p Palette) Greyed(c colorful.Color) colorful.Color {
	h, _, l := c.Hcl()
	flat := colorful.Hcl(h, 0, l*0.6).Clamped()
	return flat.BlendLab(p.Shadow, 0.5).Clamped()
}

// Backdrop composites a translucent backdrop colour over the base.
func (p Palette) Backdrop(c asset.Color) colorful.Color {
	over := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	return p.Base.BlendRgb(over, float64(c.A)/255).Clamped()
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func fg(c colorful.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcellColor(c))
}

package readline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

type XtermColor int

const (
	XtermColorBlack XtermColor = iota
	XtermColorRed
	XtermColorGreen
	XtermColorYellow
	XtermColorBlue
	XtermColorMagenta
	XtermColorCyan
	XtermColorWhite
	XtermColorUnchanged
	XtermColorDefault
)

var xtermColorNames = map[string]XtermColor{
	"black":   XtermColorBlack,
	"red":     XtermColorRed,
	"green":   XtermColorGreen,
	"yellow":  XtermColorYellow,
	"blue":    XtermColorBlue,
	"magenta": XtermColorMagenta,
	"cyan":    XtermColorCyan,
	"white":   XtermColorWhite,
	"default": XtermColorDefault,
}

type Color struct {
	R uint8
	G uint8
	B uint8

	Xterm8  XtermColor
	IsXterm bool

	HasValue bool
}

func MakeXtermColor(color XtermColor) Color {
	return Color{
		IsXterm:  true,
		HasValue: true,
		Xterm8:   color,
	}
}

func MakeRGBColor(r, g, b uint8) Color {
	return Color{
		R:        r,
		G:        g,
		B:        b,
		HasValue: true,
	}
}

// ParseColor accepts an xterm color name ("green") or a "#rrggbb" triple.
// The empty string is no color.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Color{}, nil
	}
	if c, ok := xtermColorNames[s]; ok {
		return MakeXtermColor(c), nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("parsing color %q: %w", s, err)
		}
		return MakeRGBColor(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	return Color{}, fmt.Errorf("unknown color %q", s)
}

// Style decorates the prompt. It never touches the buffer.
type Style struct {
	ForegroundColor Color
	BackgroundColor Color
	Bold            bool
	Italic          bool
	Underline       bool
}

func (s *Style) IsEmpty() bool {
	return !s.ForegroundColor.HasValue &&
		!s.BackgroundColor.HasValue &&
		!s.Bold &&
		!s.Italic &&
		!s.Underline
}

func (c Color) termenvColor(profile termenv.Profile) termenv.Color {
	if !c.HasValue {
		return nil
	}
	if c.IsXterm {
		if c.Xterm8 == XtermColorUnchanged || c.Xterm8 == XtermColorDefault {
			return nil
		}
		return profile.Color(strconv.Itoa(int(c.Xterm8)))
	}
	return profile.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// render wraps text in the escape sequences for s under profile. The Ascii
// profile renders text unchanged.
func (s Style) render(text string, profile termenv.Profile) string {
	if s.IsEmpty() || text == "" {
		return text
	}
	styled := profile.String(text)
	if fg := s.ForegroundColor.termenvColor(profile); fg != nil {
		styled = styled.Foreground(fg)
	}
	if bg := s.BackgroundColor.termenvColor(profile); bg != nil {
		styled = styled.Background(bg)
	}
	if s.Bold {
		styled = styled.Bold()
	}
	if s.Italic {
		styled = styled.Italic()
	}
	if s.Underline {
		styled = styled.Underline()
	}
	return styled.String()
}

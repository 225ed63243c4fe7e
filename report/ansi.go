package report

import (
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
)

// ansi16 is the xterm palette for the sixteen basic colors.
var ansi16 = [16]string{
	"#000000", "#cd0000", "#00cd00", "#cdcd00", "#0000ee", "#cd00cd", "#00cdcd", "#e5e5e5",
	"#7f7f7f", "#ff0000", "#00ff00", "#ffff00", "#5c5cff", "#ff00ff", "#00ffff", "#ffffff",
}

var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

// palette256 returns the xterm 256-color palette entry n as a CSS color.
func palette256(n int) string {
	switch {
	case n < 0 || n > 255:
		return ""
	case n < 16:
		return ansi16[n]
	case n < 232:
		n -= 16
		return rgbHex(cubeLevels[n/36], cubeLevels[n/6%6], cubeLevels[n%6])
	default:
		g := 8 + (n-232)*10
		return rgbHex(g, g, g)
	}
}

func rgbHex(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r&0xff, g&0xff, b&0xff)
}

// sgr is the text attribute state built up by SGR escape sequences.
type sgr struct {
	fg, bg    string
	bold      bool
	faint     bool
	italic    bool
	underline bool
}

// apply updates the state from the parameter string of one ESC[...m sequence.
func (s *sgr) apply(params string) {
	if params == "" {
		*s = sgr{}
		return
	}
	fields := strings.Split(params, ";")
	num := func(i int) int {
		if i >= len(fields) {
			return -1
		}
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return -1
		}
		return n
	}

	for i := 0; i < len(fields); i++ {
		switch n := num(i); {
		case n == 0:
			*s = sgr{}
		case n == 1:
			s.bold = true
		case n == 2:
			s.faint = true
		case n == 3:
			s.italic = true
		case n == 4:
			s.underline = true
		case n == 22:
			s.bold, s.faint = false, false
		case n == 23:
			s.italic = false
		case n == 24:
			s.underline = false
		case n >= 30 && n <= 37:
			s.fg = ansi16[n-30]
		case n >= 90 && n <= 97:
			s.fg = ansi16[n-90+8]
		case n == 39:
			s.fg = ""
		case n >= 40 && n <= 47:
			s.bg = ansi16[n-40]
		case n >= 100 && n <= 107:
			s.bg = ansi16[n-100+8]
		case n == 49:
			s.bg = ""
		case n == 38 || n == 48:
			var color string
			switch num(i + 1) {
			case 5:
				color = palette256(num(i + 2))
				i += 2
			case 2:
				r, g, b := num(i+2), num(i+3), num(i+4)
				if r >= 0 && g >= 0 && b >= 0 {
					color = rgbHex(r, g, b)
				}
				i += 4
			default:
				i++
			}
			if n == 38 {
				s.fg = color
			} else {
				s.bg = color
			}
		}
	}
}

func (s sgr) css() string {
	var parts []string
	if s.fg != "" {
		parts = append(parts, "color: "+s.fg+";")
	}
	if s.bg != "" {
		parts = append(parts, "background: "+s.bg+";")
	}
	if s.bold {
		parts = append(parts, "font-weight: bold;")
	}
	if s.faint {
		parts = append(parts, "opacity: 0.6;")
	}
	if s.italic {
		parts = append(parts, "font-style: italic;")
	}
	if s.underline {
		parts = append(parts, "text-decoration: underline;")
	}
	return strings.Join(parts, " ")
}

// ViewHTML converts a terminal view into HTML. Color and weight sequences
// become styled spans; cursor movement and other sequences are dropped.
func ViewHTML(view string) template.HTML {
	var (
		out   strings.Builder
		text  strings.Builder
		state sgr
		open  bool
	)
	flush := func() {
		if text.Len() > 0 {
			out.WriteString(html.EscapeString(text.String()))
			text.Reset()
		}
	}

	for i := 0; i < len(view); {
		c := view[i]
		switch {
		case c == '\r':
			i++
		case c == '\n':
			flush()
			out.WriteString("<br>")
			i++
		case c == '\x1b' && i+1 < len(view) && view[i+1] == '[':
			j := i + 2
			for j < len(view) && (view[j] < 0x40 || view[j] > 0x7e) {
				j++
			}
			if j == len(view) {
				i = j
				break
			}
			if view[j] == 'm' {
				flush()
				state.apply(view[i+2 : j])
				if open {
					out.WriteString("</span>")
					open = false
				}
				if css := state.css(); css != "" {
					fmt.Fprintf(&out, `<span style="%s">`, css)
					open = true
				}
			}
			i = j + 1
		default:
			text.WriteByte(c)
			i++
		}
	}
	flush()
	if open {
		out.WriteString("</span>")
	}
	return template.HTML(out.String())
}

package ass

import (
	"slices"
	"strconv"
	"strings"
)

// FontUse is one font face a script needs.
type FontUse struct {
	Name   string
	Bold   bool
	Italic bool
}

type fontState struct {
	name   string
	bold   bool
	italic bool
}

// Fonts lists the font faces referenced by styles that dialogue lines use and
// by \fn, \b, \i and \r overrides inside those lines.
func (d *Document) Fonts() []FontUse {
	styles := make(map[string]*Style)
	for _, s := range d.Styles() {
		styles[s.Name()] = s
	}
	stateFor := func(styleName string) fontState {
		s, ok := styles[styleName]
		if !ok {
			s, ok = styles["Default"]
		}
		if !ok {
			return fontState{}
		}
		return fontState{name: s.Fontname(), bold: s.Bold(), italic: s.Italic()}
	}

	seen := map[FontUse]struct{}{}
	add := func(st fontState) {
		name := strings.TrimPrefix(strings.TrimSpace(st.name), "@")
		if name == "" {
			return
		}
		seen[FontUse{Name: name, Bold: st.bold, Italic: st.italic}] = struct{}{}
	}

	for _, e := range d.Events() {
		if !e.IsDialogue() {
			continue
		}
		base := stateFor(e.Style())
		state := base
		text := e.Text()
		for len(text) > 0 {
			open := strings.IndexByte(text, '{')
			if open != 0 {
				visible := text
				if open > 0 {
					visible = text[:open]
				}
				if strings.TrimSpace(visible) != "" {
					add(state)
				}
				if open < 0 {
					break
				}
				text = text[open:]
				continue
			}
			closeIdx := strings.IndexByte(text, '}')
			if closeIdx < 0 {
				break
			}
			state = applyOverrides(text[1:closeIdx], state, base, stateFor)
			text = text[closeIdx+1:]
		}
	}

	fonts := make([]FontUse, 0, len(seen))
	for f := range seen {
		fonts = append(fonts, f)
	}
	slices.SortFunc(fonts, func(a, b FontUse) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		if a.Bold != b.Bold {
			if a.Bold {
				return 1
			}
			return -1
		}
		if a.Italic != b.Italic {
			if a.Italic {
				return 1
			}
			return -1
		}
		return 0
	})
	return fonts
}

// FontNames returns the distinct family names from Fonts.
func (d *Document) FontNames() []string {
	var names []string
	for _, f := range d.Fonts() {
		if !slices.Contains(names, f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

func applyOverrides(block string, state, base fontState, stateFor func(string) fontState) fontState {
	for _, tag := range strings.Split(block, `\`)[1:] {
		tag = strings.TrimSpace(tag)
		switch {
		case strings.HasPrefix(tag, "fn"):
			name := strings.TrimSpace(tag[2:])
			if name == "" {
				state.name = base.name
			} else {
				state.name = name
			}
		case strings.HasPrefix(tag, "r"):
			if styleName := strings.TrimSpace(tag[1:]); styleName != "" {
				state = stateFor(styleName)
			} else {
				state = base
			}
		case isWeightTag(tag, 'b'):
			state.bold = weightOn(tag[1:], base.bold)
		case isWeightTag(tag, 'i'):
			state.italic = weightOn(tag[1:], base.italic)
		}
	}
	return state
}

// isWeightTag matches \b<n> and \i<n> but not \blur, \bord, \iclip and friends.
func isWeightTag(tag string, prefix byte) bool {
	if len(tag) == 0 || tag[0] != prefix {
		return false
	}
	rest := tag[1:]
	if rest == "" {
		return true
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func weightOn(value string, fallback bool) bool {
	switch value {
	case "":
		return fallback
	case "0":
		return false
	case "1":
		return true
	}
	// \b also accepts explicit weights; 700 and up renders bold.
	weight, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return weight >= 700
}

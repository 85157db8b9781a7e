package tui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

type row struct {
	label    string
	dim      bool
	bold     bool
	selected bool
	focused  bool
}

func applySelection(rows []row, focused bool, state listState) []row {
	if len(rows) == 0 {
		return rows
	}
	state.clamp(len(rows))
	rows[state.selected].selected = true
	rows[state.selected].focused = focused
	rows[state.selected].dim = false
	return rows
}

func previewFindMatches(lines []string, needle string) []int {
	n := strings.ToLower(strings.TrimSpace(needle))
	if n == "" {
		return nil
	}
	var out []int
	for i, ln := range lines {
		if strings.Contains(strings.ToLower(ln), n) {
			out = append(out, i)
		}
	}
	return out
}

func previewScrollToMatch(matchLine int, viewH int) int {
	return max(0, matchLine-(max(1, viewH)/2))
}

func isPreviewNavKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp, tcell.KeyDown, tcell.KeyPgUp, tcell.KeyPgDn, tcell.KeyHome, tcell.KeyEnd:
		return true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j', 'J', 'k', 'K', 'g', 'G':
			return true
		}
	}
	return false
}

func applyListNavigation(state *listState, nItems int, viewH int, ev *tcell.EventKey) {
	if nItems <= 0 {
		*state = listState{}
		return
	}
	last := nItems - 1
	page := max(1, viewH)
	switch ev.Key() {
	case tcell.KeyUp:
		state.selected--
	case tcell.KeyDown:
		state.selected++
	case tcell.KeyPgUp:
		state.selected -= page
	case tcell.KeyPgDn:
		state.selected += page
	case tcell.KeyHome:
		state.selected = 0
	case tcell.KeyEnd:
		state.selected = last
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k', 'K':
			state.selected--
		case 'j', 'J':
			state.selected++
		case 'g':
			state.selected = 0
		case 'G':
			state.selected = last
		default:
			return
		}
	default:
		return
	}
	state.selected = clamp(state.selected, 0, last)
	state.ensureVisible(viewH, nItems)
}

func applyPreviewNavigation(state *previewState, nLines int, viewH int, ev *tcell.EventKey) {
	if nLines <= 0 || viewH <= 0 {
		state.scroll = 0
		return
	}
	bottom := max(0, nLines-viewH)
	switch ev.Key() {
	case tcell.KeyUp:
		state.scroll--
	case tcell.KeyDown:
		state.scroll++
	case tcell.KeyPgUp:
		state.scroll -= max(1, viewH)
	case tcell.KeyPgDn:
		state.scroll += max(1, viewH)
	case tcell.KeyHome:
		state.scroll = 0
	case tcell.KeyEnd:
		state.scroll = bottom
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'k', 'K':
			state.scroll--
		case 'j', 'J':
			state.scroll++
		case 'g':
			state.scroll = 0
		case 'G':
			state.scroll = bottom
		}
	}
	state.scroll = clamp(state.scroll, 0, bottom)
}

func (s *listState) clamp(nItems int) {
	if nItems <= 0 {
		*s = listState{}
		return
	}
	s.selected = clamp(s.selected, 0, nItems-1)
	s.scroll = clamp(s.scroll, 0, nItems-1)
}

func (s *listState) ensureVisible(viewH int, nItems int) {
	if nItems <= 0 || viewH <= 0 {
		s.scroll = 0
		return
	}
	if s.selected < s.scroll {
		s.scroll = s.selected
	} else if s.selected >= s.scroll+viewH {
		s.scroll = s.selected - viewH + 1
	}
	s.scroll = clamp(s.scroll, 0, max(0, nItems-viewH))
}

func drawBox(screen tcell.Screen, r rect, title string, focused bool, hint string) {
	if r.w <= 0 || r.h <= 0 {
		return
	}
	style := tcell.StyleDefault.Dim(true)
	if focused {
		style = tcell.StyleDefault.Bold(true)
	}
	right := r.x + r.w - 1
	bottom := r.y + r.h - 1
	for x := r.x + 1; x < right; x++ {
		screen.SetContent(x, r.y, tcell.RuneHLine, nil, style)
		screen.SetContent(x, bottom, tcell.RuneHLine, nil, style)
	}
	for y := r.y + 1; y < bottom; y++ {
		screen.SetContent(r.x, y, tcell.RuneVLine, nil, style)
		screen.SetContent(right, y, tcell.RuneVLine, nil, style)
	}
	screen.SetContent(r.x, r.y, tcell.RuneULCorner, nil, style)
	screen.SetContent(right, r.y, tcell.RuneURCorner, nil, style)
	screen.SetContent(r.x, bottom, tcell.RuneLLCorner, nil, style)
	screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, style)

	titleStyle := tcell.StyleDefault.Reverse(true)
	if focused {
		titleStyle = titleStyle.Bold(true)
		title = "> " + title + " <"
	} else {
		title = " " + title + " "
	}
	inner := max(0, r.w-2)
	title = truncate(title, inner)
	writeText(screen, r.x+1+max(0, (inner-displayWidth(title))/2), r.y, title, titleStyle)

	if hint != "" && r.h >= 2 {
		writeText(screen, r.x+1, bottom, truncate(hint, inner), style.Dim(true))
	}
}

func drawList(screen tcell.Screen, r rect, rows []row) {
	if r.h < 3 || r.w < 4 {
		return
	}
	innerW := r.w - 2
	for i := 0; i < r.h-2; i++ {
		y := r.y + 1 + i
		if i >= len(rows) {
			writeText(screen, r.x+1, y, padRight("", innerW), tcell.StyleDefault)
			continue
		}
		item := rows[i]
		style := tcell.StyleDefault
		if item.bold {
			style = style.Bold(true)
		}
		switch {
		case item.selected && item.focused:
			style = style.Reverse(true).Bold(true)
		case item.selected:
			style = style.Reverse(true).Dim(true)
		case item.dim:
			style = style.Dim(true)
		}
		writeText(screen, r.x+1, y, padRight(truncate(item.label, innerW), innerW), style)
	}
}

func drawPreview(screen tcell.Screen, r rect, lines []string, scroll int, lineAttrs map[int]tcell.Style) {
	if r.h < 3 || r.w < 4 {
		return
	}
	innerH := r.h - 2
	innerW := r.w - 2
	scroll = clamp(scroll, 0, max(0, len(lines)-innerH))
	for i := 0; i < innerH; i++ {
		idx := scroll + i
		line := ""
		style := tcell.StyleDefault
		if idx < len(lines) {
			line = truncate(lines[idx], innerW)
			if attr, ok := lineAttrs[idx]; ok {
				style = attr
			}
		}
		writeText(screen, r.x+1, r.y+1+i, padRight(line, innerW), style)
	}
}

func drawStatus(screen tcell.Screen, left string, right string, rightBold bool) {
	w, h := screen.Size()
	if h <= 0 {
		return
	}
	y := h - 1
	writeText(screen, 0, y, padRight(truncate(left, w), w), tcell.StyleDefault.Reverse(true))
	if right == "" {
		return
	}
	r := truncate(right, w)
	style := tcell.StyleDefault.Reverse(true)
	if rightBold {
		style = style.Bold(true)
	}
	writeText(screen, max(0, w-displayWidth(r)), y, r, style)
}

func writeText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	offset := 0
	for _, ch := range text {
		width := runewidth.RuneWidth(ch)
		if width == 0 {
			continue
		}
		screen.SetContent(x+offset, y, ch, nil, style)
		offset += width
	}
}

func buildWrappedLines(lines []string, width int) []string {
	if width <= 0 {
		return nil
	}
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, wrapText(ln, width)...)
	}
	return out
}

func wrapText(s string, width int) []string {
	if width <= 0 {
		return nil
	}
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		var buf strings.Builder
		cur := 0
		for _, ch := range ln {
			w := runewidth.RuneWidth(ch)
			if w > 0 && cur > 0 && cur+w > width {
				out = append(out, buf.String())
				buf.Reset()
				cur = 0
			}
			buf.WriteRune(ch)
			cur += w
		}
		out = append(out, buf.String())
	}
	return out
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if displayWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "")
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func versionLabel(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "" || strings.EqualFold(v, "dev"):
		return "dev"
	case strings.HasPrefix(strings.ToLower(v), "v"):
		return v
	}
	return "v" + v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
	"github.com/baaaaaaaka/chat_explorer/internal/view"
)

var errQuit = errors.New("quit")

// ReadMarks persists which conversations the user has opened.
type ReadMarks interface {
	IsRead(conversationID string) bool
	SetRead(conversationID string, read bool) error
}

type Options struct {
	Browser *view.Browser
	Marks   ReadMarks
	Version string
	Source  string
	// PreviewChars caps each message in the collapsed preview; 0 disables it.
	PreviewChars int
	// DefaultGapMinutes prefills the re-segment prompt before any re-segmentation.
	DefaultGapMinutes *float64
}

type uiEvent struct {
	when time.Time
	kind string
}

func (e *uiEvent) When() time.Time { return e.when }

type rect struct {
	y int
	x int
	h int
	w int
}

type layout struct {
	records rect
	preview rect
	mode    string
}

type listState struct {
	selected int
	scroll   int
}

type previewState struct {
	scroll int
}

const (
	focusRecords = "records"
	focusPreview = "preview"

	inputSearch = "search"
	inputGap    = "gap"
)

type uiState struct {
	focus       string
	inputMode   string
	inputBuffer string
	// expanded is the conversation id whose preview shows full message text.
	expanded     string
	message      string
	recordState  listState
	previewState previewState

	previewMatches  []int
	previewMatchIdx int
	previewKey      string
}

func newState() *uiState {
	return &uiState{focus: focusRecords}
}

// Run drives the interactive browser until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	if opts.Browser == nil {
		return errors.New("Browser is required")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	state := newState()

	go func() {
		<-ctx.Done()
		screen.PostEvent(&uiEvent{when: time.Now(), kind: "quit"})
	}()

	for {
		draw(screen, state, opts)
		ev := screen.PollEvent()

		switch tev := ev.(type) {
		case *uiEvent:
			if tev.kind == "quit" {
				return ctx.Err()
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if err := handleKey(screen, state, opts, tev); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func handleKey(screen tcell.Screen, state *uiState, opts Options, ev *tcell.EventKey) error {
	b := opts.Browser
	if state.inputMode != "" {
		handleInput(state, b, ev)
		return nil
	}

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyESC:
		return errQuit
	case tcell.KeyTab, tcell.KeyLeft, tcell.KeyRight:
		if state.focus == focusRecords {
			state.focus = focusPreview
		} else {
			state.focus = focusRecords
		}
		return nil
	}

	layoutMode := computeLayout(screen)
	window := b.Window()
	state.recordState.clamp(len(window.Records))
	selected, hasSelected := selectedRecord(window.Records, state.recordState.selected)

	enterPressed := ev.Key() == tcell.KeyEnter || ev.Key() == tcell.KeyCtrlJ || ev.Key() == tcell.KeyCtrlM
	if enterPressed {
		if !hasSelected {
			return nil
		}
		if state.expanded == recordKey(selected) {
			state.expanded = ""
		} else {
			state.expanded = recordKey(selected)
			setRead(state, opts.Marks, selected.ConversationID, true)
		}
		state.previewState = previewState{}
		return nil
	}

	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'q', 'Q':
			return errQuit
		case '/':
			state.inputMode = inputSearch
			state.inputBuffer = b.Filter().Search
			return nil
		case 'r', 'R':
			state.inputMode = inputGap
			state.inputBuffer = ""
			if gap, ok := b.Controller().GapMinutes(); ok {
				state.inputBuffer = strconv.FormatFloat(gap, 'f', -1, 64)
			} else if opts.DefaultGapMinutes != nil {
				state.inputBuffer = strconv.FormatFloat(*opts.DefaultGapMinutes, 'f', -1, 64)
			}
			return nil
		case 'v', 'V':
			if err := b.ToggleView(); err != nil {
				state.message = errorMessage(err)
				return nil
			}
			resetSelection(state)
			state.message = "Showing " + b.Controller().Mode().String() + "s"
			return nil
		case 's', 'S':
			b.SetSort(b.SortKey().Next())
			resetSelection(state)
			state.message = "Sort: " + string(b.SortKey())
			return nil
		case 'c', 'C':
			b.SetFilter(view.Filter{})
			resetSelection(state)
			state.message = "Filters cleared"
			return nil
		case 'm', 'M':
			if hasSelected && opts.Marks != nil {
				setRead(state, opts.Marks, selected.ConversationID, !opts.Marks.IsRead(selected.ConversationID))
			}
			return nil
		case ']':
			if !b.LoadMore() {
				state.message = "All records shown"
			}
			return nil
		case 'n', 'N':
			if state.focus == focusPreview && len(state.previewMatches) > 0 {
				if ev.Rune() == 'n' {
					state.previewMatchIdx = (state.previewMatchIdx + 1) % len(state.previewMatches)
				} else {
					state.previewMatchIdx = (state.previewMatchIdx - 1 + len(state.previewMatches)) % len(state.previewMatches)
				}
				matchLine := state.previewMatches[state.previewMatchIdx]
				state.previewState.scroll = previewScrollToMatch(matchLine, max(0, layoutMode.preview.h-2))
				return nil
			}
		}
	}

	if state.focus == focusPreview && isPreviewNavKey(ev) {
		lines := buildWrappedLines(buildPreviewLines(state, opts, selected, hasSelected), max(0, layoutMode.preview.w-2))
		applyPreviewNavigation(&state.previewState, len(lines), max(0, layoutMode.preview.h-2), ev)
		return nil
	}

	prev := state.recordState.selected
	applyListNavigation(&state.recordState, len(window.Records), layoutMode.records.h-2, ev)
	if state.recordState.selected != prev {
		state.previewState.scroll = 0
		// Reaching the last shown row pulls in the next page.
		if state.recordState.selected == len(window.Records)-1 && window.More {
			b.LoadMore()
		}
	}
	return nil
}

func handleInput(state *uiState, b *view.Browser, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyESC:
		state.inputMode = ""
		state.inputBuffer = ""
	case tcell.KeyEnter:
		mode := state.inputMode
		value := strings.TrimSpace(state.inputBuffer)
		state.inputMode = ""
		state.inputBuffer = ""
		switch mode {
		case inputSearch:
			f := b.Filter()
			f.Search = value
			b.SetFilter(f)
			resetSelection(state)
		case inputGap:
			gap, err := strconv.ParseFloat(value, 64)
			if err != nil {
				state.message = fmt.Sprintf("Invalid gap %q", value)
				return
			}
			if err := b.Resegment(gap); err != nil {
				state.message = errorMessage(err)
				return
			}
			resetSelection(state)
			state.message = fmt.Sprintf("Re-segmented with a %s minute gap", value)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(state.inputBuffer) > 0 {
			r := []rune(state.inputBuffer)
			state.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ch := ev.Rune()
		if state.inputMode == inputGap {
			if (ch >= '0' && ch <= '9') || ch == '.' {
				state.inputBuffer += string(ch)
			}
			return
		}
		if ch >= 32 {
			state.inputBuffer += string(ch)
		}
	}
}

func setRead(state *uiState, marks ReadMarks, conversationID string, read bool) {
	if marks == nil || conversationID == "" {
		return
	}
	if err := marks.SetRead(conversationID, read); err != nil {
		state.message = fmt.Sprintf("Read marker: %v", err)
		return
	}
	if read {
		state.message = "Marked " + conversationID + " read"
	} else {
		state.message = "Marked " + conversationID + " unread"
	}
}

func resetSelection(state *uiState) {
	state.recordState = listState{}
	state.previewState = previewState{}
	state.expanded = ""
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, view.ErrNoMessages):
		return "No messages loaded"
	case errors.Is(err, view.ErrInvalidGap):
		return "Gap must be a non-negative number of minutes"
	}
	return err.Error()
}

func selectedRecord(records []transcript.Record, idx int) (transcript.Record, bool) {
	if idx < 0 || idx >= len(records) {
		return transcript.Record{}, false
	}
	return records[idx], true
}

func recordKey(r transcript.Record) string {
	return fmt.Sprintf("%s|%s|%d", r.ConversationID, r.SegmentID, r.Index)
}

func computeLayout(screen tcell.Screen) layout {
	maxX, maxY := screen.Size()
	usableH := max(1, maxY-1)

	if maxX >= 80 && usableH >= 10 {
		leftW := min(70, max(36, maxX*2/5))
		return layout{
			records: rect{y: 0, x: 0, h: usableH, w: leftW},
			preview: rect{y: 0, x: leftW, h: usableH, w: maxX - leftW},
			mode:    "2col",
		}
	}

	listH := max(1, int(float64(usableH)*0.5))
	if usableH > 1 {
		listH = clamp(listH, 1, usableH-1)
	}
	return layout{
		records: rect{y: 0, x: 0, h: listH, w: maxX},
		preview: rect{y: listH, x: 0, h: usableH - listH, w: maxX},
		mode:    "stacked",
	}
}

func draw(screen tcell.Screen, state *uiState, opts Options) {
	screen.Clear()
	b := opts.Browser
	layoutMode := computeLayout(screen)

	window := b.Window()
	state.recordState.clamp(len(window.Records))
	state.recordState.ensureVisible(layoutMode.records.h-2, len(window.Records))
	selected, hasSelected := selectedRecord(window.Records, state.recordState.selected)

	title, subtitle := b.Header()
	hint := subtitle
	if state.inputMode == inputSearch {
		hint = "/" + state.inputBuffer
	} else if s := b.Filter().Search; s != "" {
		hint = "/" + s + "  " + subtitle
	}
	drawBox(screen, layoutMode.records, title, state.focus == focusRecords, hint)
	drawList(screen, layoutMode.records, renderRecordRows(window, b.Controller().Mode(), opts.Marks, state.focus == focusRecords, state.recordState, layoutMode.records.h-2))

	previewTitle := "Preview"
	if hasSelected {
		previewTitle = selected.Label(b.Controller().Mode() == view.SegmentView)
	}
	drawBox(screen, layoutMode.preview, previewTitle, state.focus == focusPreview, "")
	lines := buildWrappedLines(buildPreviewLines(state, opts, selected, hasSelected), max(0, layoutMode.preview.w-2))
	viewH := max(0, layoutMode.preview.h-2)
	state.previewState.scroll = clamp(state.previewState.scroll, 0, max(0, len(lines)-viewH))

	search := b.Filter().Search
	key := fmt.Sprintf("%s|%d|%s|%s", recordKey(selected), layoutMode.preview.w, state.expanded, search)
	if key != state.previewKey {
		state.previewKey = key
		state.previewMatches = previewFindMatches(lines, search)
		state.previewMatchIdx = 0
	}
	lineAttrs := map[int]tcell.Style{}
	for _, idx := range state.previewMatches {
		lineAttrs[idx] = tcell.StyleDefault.Bold(true)
	}
	if len(state.previewMatches) > 0 {
		lineAttrs[state.previewMatches[state.previewMatchIdx]] = tcell.StyleDefault.Reverse(true)
	}
	drawPreview(screen, layoutMode.preview, lines, state.previewState.scroll, lineAttrs)

	drawStatus(screen, statusText(state, b), statusRight(b, opts.Version), false)
	screen.Show()
}

func statusText(state *uiState, b *view.Browser) string {
	switch state.inputMode {
	case inputSearch:
		return "Search: " + state.inputBuffer + "  Enter: apply  Esc: cancel"
	case inputGap:
		return "Gap minutes: " + state.inputBuffer + "  Enter: re-segment  Esc: cancel"
	}
	if state.message != "" {
		msg := state.message
		state.message = ""
		return msg
	}
	if len(b.Controller().Messages()) == 0 {
		return "No messages loaded  q: quit"
	}
	return "j/k: move  Tab: switch  Enter: expand  /: search  v: view  r: gap  s: sort  m: read  c: clear  ]: more  q: quit"
}

func statusRight(b *view.Browser, version string) string {
	st := b.Stats()
	ctrl := b.Controller()
	parts := []string{
		fmt.Sprintf("%d seg  %d conv  %d cust  %d msg", st.Segments, st.Conversations, st.Customers, st.Messages),
		"view:" + ctrl.Mode().String(),
	}
	if gap, ok := ctrl.GapMinutes(); ok {
		parts = append(parts, "gap:"+strconv.FormatFloat(gap, 'f', -1, 64)+"m")
	}
	parts = append(parts, "sort:"+string(b.SortKey()), versionLabel(version))
	return " " + strings.Join(parts, "  ") + " "
}

func renderRecordRows(window view.Window, mode view.Mode, marks ReadMarks, focused bool, state listState, viewH int) []row {
	items := window.Records
	rows := make([]row, 0, min(len(items)+1, max(0, viewH)))
	start := clamp(state.scroll, 0, max(0, len(items)))
	end := min(len(items), start+max(0, viewH))
	for i := start; i < end; i++ {
		r := items[i]
		read := marks != nil && marks.IsRead(r.ConversationID)
		rows = append(rows, row{label: recordLabel(r, mode, read), dim: read})
	}
	if end == len(items) && window.More && len(rows) < viewH {
		rows = append(rows, row{label: fmt.Sprintf("  ... %d more (])", window.Total-window.Shown), dim: true})
	}
	return applySelection(rows, focused, listState{selected: state.selected - start})
}

func recordLabel(r transcript.Record, mode view.Mode, read bool) string {
	marker := "*"
	if read {
		marker = " "
	}
	return fmt.Sprintf("%s %s  %s  %s  %d msg  %s",
		marker,
		transcript.FormatDate(r.StartTime),
		r.ConversationID,
		r.Label(mode == view.SegmentView),
		r.Metrics.MessageCount,
		transcript.FormatDuration(r.Metrics.DurationMinutes),
	)
}

func buildPreviewLines(state *uiState, opts Options, selected transcript.Record, hasSelected bool) []string {
	b := opts.Browser
	if len(b.Controller().Messages()) == 0 {
		lines := []string{"No conversations loaded."}
		if opts.Source != "" {
			lines = append(lines, "", "Source: "+opts.Source)
		}
		return lines
	}
	if !hasSelected {
		return []string{"No records match the current filters.", "", "Press c to clear filters."}
	}

	maxChars := opts.PreviewChars
	if state.expanded == recordKey(selected) {
		maxChars = 0
	}
	lines := strings.Split(transcript.FormatRecord(selected, b.Controller().Mode() == view.SegmentView, maxChars), "\n")
	if opts.Marks != nil && opts.Marks.IsRead(selected.ConversationID) {
		lines = append([]string{"[read]"}, lines...)
	}
	if maxChars > 0 {
		lines = append(lines, "", "Enter: show full messages")
	}
	return lines
}

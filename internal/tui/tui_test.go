package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
	"github.com/baaaaaaaka/chat_explorer/internal/view"
)

var day = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type memMarks struct {
	read map[string]bool
	err  error
}

func (m *memMarks) IsRead(id string) bool { return m.read[id] }

func (m *memMarks) SetRead(id string, read bool) error {
	if m.err != nil {
		return m.err
	}
	if m.read == nil {
		m.read = map[string]bool{}
	}
	m.read[id] = read
	return nil
}

func newTestScreen(t *testing.T, w, h int) tcell.Screen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(func() { screen.Fini() })
	return screen
}

func rawMsg(from string, offset time.Duration, text string) transcript.RawMessage {
	return transcript.RawMessage{
		From: transcript.FlexString(from),
		Time: transcript.FlexString(day.Add(offset).Format(time.RFC3339)),
		Text: transcript.FlexString(text),
	}
}

func newTestOptions(t *testing.T, pageSize int) (Options, *memMarks) {
	t.Helper()
	batch := transcript.NewBatch([]transcript.RawConversation{
		{
			ConversationID: "c1", SegmentID: "1", CustomerID: "alice", Language: "en",
			Messages: []transcript.RawMessage{
				rawMsg("user", 0, "my order is late"),
				rawMsg("agent", 2*time.Minute, "let me check"),
			},
		},
		{
			ConversationID: "c1", SegmentID: "2", CustomerID: "alice", Language: "en",
			Messages: []transcript.RawMessage{
				rawMsg("user", 90*time.Minute, "any news?"),
				rawMsg("agent", 95*time.Minute, "shipped today"),
				rawMsg("user", 96*time.Minute, "thanks"),
			},
		},
		{
			ConversationID: "c2", CustomerID: "bob", Language: "fr",
			Messages: []transcript.RawMessage{
				rawMsg("user", 24*time.Hour, "bonjour"),
			},
		},
	})
	marks := &memMarks{}
	return Options{
		Browser:      view.NewBrowser(view.NewController(batch), view.SortDateAsc, pageSize),
		Marks:        marks,
		PreviewChars: 100,
	}, marks
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, 0)
}

func press(t *testing.T, screen tcell.Screen, state *uiState, opts Options, events ...*tcell.EventKey) {
	t.Helper()
	for _, ev := range events {
		if err := handleKey(screen, state, opts, ev); err != nil {
			t.Fatalf("handleKey error: %v", err)
		}
	}
}

func typeText(s string) []*tcell.EventKey {
	var out []*tcell.EventKey
	for _, r := range s {
		out = append(out, key(r))
	}
	return out
}

func TestHandleKeyQuit(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)

	for _, ev := range []*tcell.EventKey{key('q'), tcell.NewEventKey(tcell.KeyESC, 0, 0), tcell.NewEventKey(tcell.KeyCtrlC, 0, 0)} {
		if err := handleKey(screen, newState(), opts, ev); !errors.Is(err, errQuit) {
			t.Fatalf("expected quit error, got %v", err)
		}
	}
}

func TestHandleKeyJKNavigation(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, key('j'))
	if state.recordState.selected != 1 {
		t.Fatalf("expected selection 1, got %d", state.recordState.selected)
	}
	press(t, screen, state, opts, key('j'), key('j'), key('j'))
	if state.recordState.selected != 2 {
		t.Fatalf("expected selection clamped to 2, got %d", state.recordState.selected)
	}
	press(t, screen, state, opts, key('k'))
	if state.recordState.selected != 1 {
		t.Fatalf("expected selection 1, got %d", state.recordState.selected)
	}
}

func TestHandleKeyTabSwitchesFocus(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, tcell.NewEventKey(tcell.KeyTab, 0, 0))
	if state.focus != focusPreview {
		t.Fatalf("expected preview focus, got %q", state.focus)
	}
	press(t, screen, state, opts, key('j'))
	if state.recordState.selected != 0 {
		t.Fatalf("j in preview must not move the list, got %d", state.recordState.selected)
	}
	press(t, screen, state, opts, tcell.NewEventKey(tcell.KeyTab, 0, 0))
	if state.focus != focusRecords {
		t.Fatalf("expected records focus, got %q", state.focus)
	}
}

func TestHandleKeyToggleView(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()
	state.recordState.selected = 2

	press(t, screen, state, opts, key('v'))
	b := opts.Browser
	if b.Controller().Mode() != view.ConversationView {
		t.Fatalf("expected conversation view, got %s", b.Controller().Mode())
	}
	if got := len(b.Window().Records); got != 2 {
		t.Fatalf("expected 2 conversations, got %d", got)
	}
	if state.recordState.selected != 0 {
		t.Fatalf("expected selection reset, got %d", state.recordState.selected)
	}

	press(t, screen, state, opts, key('v'))
	if b.Controller().Mode() != view.SegmentView || len(b.Window().Records) != 3 {
		t.Fatalf("expected baseline segments back, got %s with %d", b.Controller().Mode(), len(b.Window().Records))
	}
}

func TestGapInputResegments(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, key('r'))
	if state.inputMode != inputGap || state.inputBuffer != "" {
		t.Fatalf("expected empty gap prompt, got mode=%q buf=%q", state.inputMode, state.inputBuffer)
	}
	press(t, screen, state, opts, typeText("1x20")...)
	if state.inputBuffer != "120" {
		t.Fatalf("expected non-numeric input to be ignored, got %q", state.inputBuffer)
	}
	press(t, screen, state, opts, tcell.NewEventKey(tcell.KeyEnter, 0, 0))

	gap, ok := opts.Browser.Controller().GapMinutes()
	if !ok || gap != 120 {
		t.Fatalf("expected gap 120, got %v ok=%v", gap, ok)
	}
	if got := len(opts.Browser.Window().Records); got != 2 {
		t.Fatalf("expected 2 segments, got %d", got)
	}
	if state.inputMode != "" {
		t.Fatalf("expected input mode cleared")
	}

	press(t, screen, state, opts, key('r'))
	if state.inputBuffer != "120" {
		t.Fatalf("expected prompt prefilled with current gap, got %q", state.inputBuffer)
	}
}

func TestGapPromptUsesDefault(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	gap := 30.0
	opts.DefaultGapMinutes = &gap
	state := newState()

	press(t, screen, state, opts, key('r'))
	if state.inputBuffer != "30" {
		t.Fatalf("expected configured gap, got %q", state.inputBuffer)
	}
}

func TestGapInputRejectsEmpty(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, key('r'), tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	if !strings.Contains(state.message, "Invalid gap") {
		t.Fatalf("expected invalid gap message, got %q", state.message)
	}
	if _, ok := opts.Browser.Controller().GapMinutes(); ok {
		t.Fatalf("controller must stay on the baseline")
	}
}

func TestGapInputEscCancels(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, key('r'), key('5'), tcell.NewEventKey(tcell.KeyESC, 0, 0))
	if state.inputMode != "" || state.inputBuffer != "" {
		t.Fatalf("expected input cleared, got mode=%q buf=%q", state.inputMode, state.inputBuffer)
	}
	if _, ok := opts.Browser.Controller().GapMinutes(); ok {
		t.Fatalf("Esc must not re-segment")
	}
}

func TestSearchInputFilters(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, key('/'))
	press(t, screen, state, opts, typeText("bobx")...)
	press(t, screen, state, opts, tcell.NewEventKey(tcell.KeyBackspace2, 0, 0), tcell.NewEventKey(tcell.KeyEnter, 0, 0))

	b := opts.Browser
	if b.Filter().Search != "bob" {
		t.Fatalf("expected search bob, got %q", b.Filter().Search)
	}
	records := b.Window().Records
	if len(records) != 1 || records[0].ConversationID != "c2" {
		t.Fatalf("unexpected records: %#v", records)
	}

	press(t, screen, state, opts, key('c'))
	if !b.Filter().IsZero() || len(b.Window().Records) != 3 {
		t.Fatalf("expected filters cleared")
	}
}

func TestEnterExpandsAndMarksRead(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, marks := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	if !marks.IsRead("c1") {
		t.Fatalf("expected c1 marked read")
	}
	first := opts.Browser.Window().Records[0]
	if state.expanded != recordKey(first) {
		t.Fatalf("expected first record expanded, got %q", state.expanded)
	}

	lines := strings.Join(buildPreviewLines(state, opts, first, true), "\n")
	if strings.Contains(lines, "Enter: show full messages") {
		t.Fatalf("expanded preview should not offer expansion: %q", lines)
	}
	if !strings.Contains(lines, "[read]") {
		t.Fatalf("expected read marker in preview: %q", lines)
	}

	press(t, screen, state, opts, tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	if state.expanded != "" {
		t.Fatalf("second Enter should collapse")
	}
	if !marks.IsRead("c1") {
		t.Fatalf("collapsing must keep the read marker")
	}

	press(t, screen, state, opts, key('m'))
	if marks.IsRead("c1") {
		t.Fatalf("m should toggle c1 back to unread")
	}
}

func TestReadMarkerErrorIsReported(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, marks := newTestOptions(t, 50)
	marks.err = errors.New("disk full")
	state := newState()

	press(t, screen, state, opts, key('m'))
	if !strings.Contains(state.message, "disk full") {
		t.Fatalf("expected error in message, got %q", state.message)
	}
}

func TestSortCycles(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	press(t, screen, state, opts, key('s'))
	if got, want := opts.Browser.SortKey(), view.SortDateAsc.Next(); got != want {
		t.Fatalf("expected sort %s, got %s", want, got)
	}
}

func TestLoadMore(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 1)
	state := newState()

	press(t, screen, state, opts, key(']'))
	if got := opts.Browser.Window().Shown; got != 2 {
		t.Fatalf("expected 2 shown, got %d", got)
	}
	press(t, screen, state, opts, key(']'), key(']'))
	if state.message != "All records shown" {
		t.Fatalf("expected exhausted message, got %q", state.message)
	}
}

func TestNavigatingToLastRowLoadsMore(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts, _ := newTestOptions(t, 2)
	state := newState()

	press(t, screen, state, opts, key('j'))
	if got := opts.Browser.Window().Shown; got != 3 {
		t.Fatalf("expected next page loaded, got %d shown", got)
	}
}

func TestEmptyBrowserReportsNoMessages(t *testing.T) {
	screen := newTestScreen(t, 120, 40)
	opts := Options{Browser: view.NewBrowser(view.NewController(transcript.NewBatch(nil)), view.SortDateDesc, 0)}
	state := newState()

	press(t, screen, state, opts, key('v'))
	if state.message != "No messages loaded" {
		t.Fatalf("expected no messages warning, got %q", state.message)
	}
	press(t, screen, state, opts, tcell.NewEventKey(tcell.KeyEnter, 0, 0), key('m'), key('j'))

	draw(screen, state, opts)
	if line := readScreenLine(screen, 1); !strings.Contains(line, "No conversations loaded.") {
		t.Fatalf("expected empty preview, got %q", strings.TrimSpace(line))
	}
}

func TestDrawShowsHeaderAndStatus(t *testing.T) {
	screen := newTestScreen(t, 200, 20)
	opts, _ := newTestOptions(t, 50)
	opts.Version = "1.2.3"
	state := newState()

	draw(screen, state, opts)
	if line := readScreenLine(screen, 0); !strings.Contains(line, "Segments (3)") {
		t.Fatalf("expected header, got %q", strings.TrimSpace(line))
	}
	if line := readScreenLine(screen, 1); !strings.Contains(line, "c1") || !strings.Contains(line, "Segment #1") {
		t.Fatalf("expected first record row, got %q", strings.TrimSpace(line))
	}
	_, h := screen.Size()
	status := readScreenLine(screen, h-1)
	for _, want := range []string{"3 seg", "2 conv", "view:segment", "sort:date-asc", "v1.2.3"} {
		if !strings.Contains(status, want) {
			t.Fatalf("expected %q in status line, got %q", want, strings.TrimSpace(status))
		}
	}

	press(t, screen, state, opts, key('r'), key('6'), key('0'), tcell.NewEventKey(tcell.KeyEnter, 0, 0))
	draw(screen, state, opts)
	status = readScreenLine(screen, h-1)
	if !strings.Contains(status, "gap:60m") || !strings.Contains(status, "Re-segmented") {
		t.Fatalf("expected gap in status line, got %q", strings.TrimSpace(status))
	}
}

func TestPreviewHighlightsSearchMatches(t *testing.T) {
	screen := newTestScreen(t, 160, 30)
	opts, _ := newTestOptions(t, 50)
	state := newState()

	opts.Browser.SetFilter(view.Filter{Search: "shipped"})
	draw(screen, state, opts)
	if len(state.previewMatches) != 1 {
		t.Fatalf("expected one match, got %v", state.previewMatches)
	}
}

func TestWrapAndTruncate(t *testing.T) {
	if got := wrapText("abcdef", 4); len(got) != 2 || got[0] != "abcd" || got[1] != "ef" {
		t.Fatalf("wrapText=%q", got)
	}
	if got := wrapText("游戏游戏", 5); len(got) != 2 || got[0] != "游戏" {
		t.Fatalf("wrapText wide=%q", got)
	}
	if got := truncate("游戏开始", 5); got != "游戏" {
		t.Fatalf("truncate=%q", got)
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight=%q", got)
	}
	if got := versionLabel(""); got != "dev" {
		t.Fatalf("versionLabel=%q", got)
	}
	if got := versionLabel("1.0"); got != "v1.0" {
		t.Fatalf("versionLabel=%q", got)
	}
}

func readScreenLine(screen tcell.Screen, y int) string {
	w, _ := screen.Size()
	var buf strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		if ch == 0 {
			ch = ' '
		}
		buf.WriteRune(ch)
	}
	return buf.String()
}

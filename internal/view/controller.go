package view

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

var (
	ErrNoMessages = errors.New("no messages loaded")
	ErrInvalidGap = errors.New("gap must be a non-negative number of minutes")
)

type Mode int

const (
	SegmentView Mode = iota
	ConversationView
)

func (m Mode) String() string {
	if m == ConversationView {
		return "conversation"
	}
	return "segment"
}

func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "segment", "segments":
		return SegmentView, nil
	case "conversation", "conversations":
		return ConversationView, nil
	}
	return SegmentView, fmt.Errorf("unknown view %q (want segment or conversation)", raw)
}

// Controller owns the loaded messages, the baseline segments from the input
// and the active set. It is a value;
// transitions return a new Controller and never modify the receiver's sets.
type Controller struct {
	messages    []transcript.Message
	baseline    []transcript.Record
	active      []transcript.Record
	mode        Mode
	gapMinutes  float64
	resegmented bool
	generation  int
}

func NewController(batch transcript.Batch) Controller {
	return Controller{
		messages: batch.Messages,
		baseline: batch.Baseline,
		active:   batch.Baseline,
		mode:     SegmentView,
	}
}

func (c Controller) Mode() Mode { return c.mode }

func (c Controller) Active() []transcript.Record { return c.active }

func (c Controller) Baseline() []transcript.Record { return c.baseline }

func (c Controller) Messages() []transcript.Message { return c.messages }

// GapMinutes is the threshold of the last re-segmentation; 0 and false while
// the baseline segments are shown.
func (c Controller) GapMinutes() (float64, bool) {
	return c.gapMinutes, c.resegmented
}

// Generation changes on every successful transition so consumers know to
// re-apply filters and reset paging.
func (c Controller) Generation() int { return c.generation }

// ShowConversations merges the loaded messages again on every call.
func (c Controller) ShowConversations() (Controller, error) {
	if len(c.messages) == 0 {
		return c, ErrNoMessages
	}
	next := c
	next.active = transcript.Merge(c.messages)
	next.mode = ConversationView
	next.gapMinutes = 0
	next.resegmented = false
	next.generation++
	return next, nil
}

// ShowSegments restores the baseline captured at load; it never re-segments.
func (c Controller) ShowSegments() (Controller, error) {
	if len(c.baseline) == 0 {
		return c, ErrNoMessages
	}
	next := c
	next.active = c.baseline
	next.mode = SegmentView
	next.gapMinutes = 0
	next.resegmented = false
	next.generation++
	return next, nil
}

func (c Controller) Toggle() (Controller, error) {
	if c.mode == SegmentView {
		return c.ShowConversations()
	}
	return c.ShowSegments()
}

func (c Controller) Resegment(gapMinutes float64) (Controller, error) {
	if math.IsNaN(gapMinutes) || math.IsInf(gapMinutes, 0) || gapMinutes < 0 {
		return c, ErrInvalidGap
	}
	if len(c.messages) == 0 {
		return c, ErrNoMessages
	}
	next := c
	next.active = transcript.Resegment(c.messages, gapMinutes)
	next.mode = SegmentView
	next.gapMinutes = gapMinutes
	next.resegmented = true
	next.generation++
	return next, nil
}

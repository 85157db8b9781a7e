package view

import (
	"fmt"
	"strings"

	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
)

// Browser is the filter/sort/paging layer over a Controller. It swaps in a
// new controller value on every transition and recomputes the visible set.
type Browser struct {
	ctrl     Controller
	filter   Filter
	sortKey  SortKey
	pageSize int
	pages    int
	visible  []transcript.Record
}

func NewBrowser(ctrl Controller, sortKey SortKey, pageSize int) *Browser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	b := &Browser{ctrl: ctrl, sortKey: sortKey, pageSize: pageSize}
	b.refresh()
	return b
}

func (b *Browser) Controller() Controller { return b.ctrl }

func (b *Browser) Filter() Filter { return b.filter }

func (b *Browser) SortKey() SortKey { return b.sortKey }

func (b *Browser) SetController(ctrl Controller) {
	b.ctrl = ctrl
	b.refresh()
}

func (b *Browser) SetFilter(f Filter) {
	b.filter = f
	b.refresh()
}

func (b *Browser) SetSort(key SortKey) {
	b.sortKey = key
	b.refresh()
}

// ToggleView switches between segment and conversation view. On ErrNoMessages
// the browser is left untouched.
func (b *Browser) ToggleView() error {
	next, err := b.ctrl.Toggle()
	if err != nil {
		return err
	}
	b.SetController(next)
	return nil
}

func (b *Browser) Resegment(gapMinutes float64) error {
	next, err := b.ctrl.Resegment(gapMinutes)
	if err != nil {
		return err
	}
	b.SetController(next)
	return nil
}

func (b *Browser) LoadMore() bool {
	w := b.Window()
	if !w.More {
		return false
	}
	b.pages++
	return true
}

func (b *Browser) Visible() []transcript.Record { return b.visible }

func (b *Browser) Window() Window {
	return Paginate(b.visible, b.pages, b.pageSize)
}

func (b *Browser) Stats() Stats { return Summarize(b.visible) }

func (b *Browser) Options() FilterOptions { return Options(b.ctrl.Active()) }

// Header returns the list title and the "filtered from" subtitle.
func (b *Browser) Header() (string, string) {
	label := "Segments"
	if b.ctrl.Mode() == ConversationView {
		label = "Conversations"
	}
	total := len(b.ctrl.Active())
	title := fmt.Sprintf("%s (%d)", label, len(b.visible))
	if len(b.visible) == total {
		return title, "Showing all " + strings.ToLower(label)
	}
	return title, fmt.Sprintf("Filtered from %d total", total)
}

func (b *Browser) refresh() {
	b.visible = Sort(b.filter.Apply(b.ctrl.Active()), b.sortKey)
	b.pages = 1
}

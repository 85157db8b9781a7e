package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/baaaaaaaka/chat_explorer/internal/config"
	"github.com/baaaaaaaka/chat_explorer/internal/transcript"
	"github.com/baaaaaaaka/chat_explorer/internal/view"
)

// viewFlags are the view, segmentation and filter flags shared by the
// commands that render a record list.
type viewFlags struct {
	cmd *cobra.Command

	mode      string
	gap       float64
	resegment bool
	sort      string

	search      string
	from        string
	to          string
	language    string
	country     string
	minMessages int
	maxMessages int
	minDuration float64
	maxDuration float64
}

func (f *viewFlags) register(cmd *cobra.Command, withFilters bool) {
	f.cmd = cmd
	fl := cmd.Flags()
	fl.StringVar(&f.mode, "view", "", "View: segment or conversation (default from config)")
	fl.Float64Var(&f.gap, "gap", 0, "Re-segment with this inactivity gap in minutes")
	fl.BoolVar(&f.resegment, "resegment", false, "Re-segment with the configured gap_minutes")
	if !withFilters {
		return
	}
	fl.StringVar(&f.sort, "sort", "", "Sort: "+sortKeyList()+" (default from config)")
	fl.StringVar(&f.search, "search", "", "Case-insensitive search over ids and message text")
	fl.StringVar(&f.from, "from", "", "Only records starting on or after this date (YYYY-MM-DD)")
	fl.StringVar(&f.to, "to", "", "Only records starting on or before this date (YYYY-MM-DD)")
	fl.StringVar(&f.language, "language", "", "Only this language code")
	fl.StringVar(&f.country, "country", "", "Only this country")
	fl.IntVar(&f.minMessages, "min-messages", 0, "Minimum message count")
	fl.IntVar(&f.maxMessages, "max-messages", 0, "Maximum message count")
	fl.Float64Var(&f.minDuration, "min-duration", 0, "Minimum duration in minutes")
	fl.Float64Var(&f.maxDuration, "max-duration", 0, "Maximum duration in minutes")
}

func (f *viewFlags) changed(name string) bool {
	if f.cmd == nil {
		return false
	}
	fl := f.cmd.Flags().Lookup(name)
	return fl != nil && fl.Changed
}

func sortKeyList() string {
	keys := make([]string, 0, len(view.SortKeys))
	for _, k := range view.SortKeys {
		keys = append(keys, string(k))
	}
	return strings.Join(keys, ", ")
}

func (f *viewFlags) filter() (view.Filter, error) {
	out := view.Filter{
		Search:   strings.TrimSpace(f.search),
		Language: strings.TrimSpace(f.language),
		Country:  strings.TrimSpace(f.country),
	}
	if f.from != "" {
		t, err := view.ParseDate(f.from)
		if err != nil {
			return view.Filter{}, fmt.Errorf("--from: %w", err)
		}
		out.From = t
	}
	if f.to != "" {
		t, err := view.ParseDate(f.to)
		if err != nil {
			return view.Filter{}, fmt.Errorf("--to: %w", err)
		}
		out.To = t
	}
	if f.changed("min-messages") {
		v := f.minMessages
		out.MinMessages = &v
	}
	if f.changed("max-messages") {
		v := f.maxMessages
		out.MaxMessages = &v
	}
	if f.changed("min-duration") {
		v := f.minDuration
		out.MinDuration = &v
	}
	if f.changed("max-duration") {
		v := f.maxDuration
		out.MaxDuration = &v
	}
	return out, nil
}

func loadBatch(root *rootOptions, path string) (transcript.Batch, error) {
	log := root.component("loader")
	batch, err := transcript.LoadFile(path)
	if errors.Is(err, transcript.ErrEmptyInput) {
		log.Warn().Str("file", path).Msg("input is empty; no messages loaded")
		return transcript.NewBatch(nil), nil
	}
	if err != nil {
		return transcript.Batch{}, err
	}

	rep := batch.Report
	log.Info().
		Str("file", path).
		Int("records", rep.Records).
		Int("messages", rep.Messages).
		Int("conversations", rep.Conversations).
		Msg("transcripts loaded")
	if rep.EmptyRecords > 0 {
		log.Warn().Int("count", rep.EmptyRecords).Msg("skipped records without messages")
	}
	if rep.MissingIDs > 0 {
		log.Warn().Int("count", rep.MissingIDs).Msg("records without conversation_id")
	}
	if rep.UnparseableTimes > 0 {
		log.Warn().Int("count", rep.UnparseableTimes).Msg("messages with missing or unparseable time")
	}
	if rep.Messages == 0 {
		log.Warn().Msg("no messages loaded")
	}
	return batch, nil
}

// buildController applies the configured view and optional re-segmentation
// to a freshly loaded batch.
func buildController(root *rootOptions, f *viewFlags, batch transcript.Batch) (view.Controller, error) {
	log := root.component("view")
	ctrl := view.NewController(batch)

	modeRaw := root.settings.View
	if f.mode != "" {
		modeRaw = f.mode
	}
	mode, err := view.ParseMode(modeRaw)
	if err != nil {
		return view.Controller{}, err
	}

	if f.changed("gap") || f.resegment {
		gap := root.settings.GapMinutes
		if f.changed("gap") {
			gap = f.gap
		}
		next, err := ctrl.Resegment(gap)
		switch {
		case errors.Is(err, view.ErrNoMessages):
			log.Warn().Msg("no messages to re-segment")
		case err != nil:
			return view.Controller{}, fmt.Errorf("re-segment: %w", err)
		default:
			ctrl = next
			log.Debug().Float64("gap_minutes", gap).Int("segments", len(ctrl.Active())).Msg("re-segmented")
		}
	}

	if mode == view.ConversationView {
		next, err := ctrl.ShowConversations()
		if errors.Is(err, view.ErrNoMessages) {
			log.Warn().Msg("no messages to merge into conversations")
			return ctrl, nil
		}
		if err != nil {
			return view.Controller{}, err
		}
		ctrl = next
	}
	return ctrl, nil
}

func buildBrowser(root *rootOptions, f *viewFlags, batch transcript.Batch, pageSize int) (*view.Browser, error) {
	ctrl, err := buildController(root, f, batch)
	if err != nil {
		return nil, err
	}
	sortRaw := root.settings.Sort
	if f.sort != "" {
		sortRaw = f.sort
	}
	key, err := view.ParseSortKey(sortRaw)
	if err != nil {
		return nil, err
	}
	filter, err := f.filter()
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = root.settings.PageSize
	}
	b := view.NewBrowser(ctrl, key, pageSize)
	b.SetFilter(filter)
	return b, nil
}

// storeMarks serves read markers from a cached copy of the read-state file.
type storeMarks struct {
	store *config.ReadStateStore
	state config.ReadState
	now   func() time.Time
}

func openMarks(root *rootOptions) (*storeMarks, error) {
	store, err := config.NewReadStateStore(root.configPath)
	if err != nil {
		return nil, err
	}
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &storeMarks{store: store, state: state, now: time.Now}, nil
}

func (m *storeMarks) IsRead(conversationID string) bool {
	return m.state.IsRead(conversationID)
}

func (m *storeMarks) SetRead(conversationID string, read bool) error {
	return m.store.Update(func(s *config.ReadState) error {
		if read {
			s.MarkRead(conversationID, m.now())
		} else {
			s.MarkUnread(conversationID)
		}
		m.state = *s
		return nil
	})
}

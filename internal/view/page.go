package view

import "github.com/baaaaaaaka/chat_explorer/internal/transcript"

const DefaultPageSize = 50

// Window is the cumulative "load more" slice: pages 1..n of the filtered set.
type Window struct {
	Records []transcript.Record
	Shown   int
	Total   int
	More    bool
}

func Paginate(records []transcript.Record, pages, size int) Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	if pages <= 0 {
		pages = 1
	}
	end := pages * size
	if end > len(records) || end < 0 {
		end = len(records)
	}
	return Window{
		Records: records[:end],
		Shown:   end,
		Total:   len(records),
		More:    end < len(records),
	}
}

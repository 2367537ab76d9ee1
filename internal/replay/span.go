package replay

import "fmt"

// Span is an inclusive range of 1-based record positions in the input.
type Span struct {
	First uint64
	Last  uint64
}

func (s Span) Len() int {
	return int(s.Last - s.First + 1)
}

// SplitSpan cuts [first, last] into consecutive spans of at most size records.
func SplitSpan(first, last, size uint64) ([]Span, error) {
	if size == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if first == 0 {
		return nil, fmt.Errorf("record positions start at 1")
	}
	if last < first {
		return nil, fmt.Errorf("last record must be >= first record")
	}

	spans := make([]Span, 0, (last-first)/size+1)
	for start := first; ; start += size {
		end := last
		if last-start >= size {
			end = start + size - 1
		}
		spans = append(spans, Span{First: start, Last: end})
		if end == last {
			return spans, nil
		}
	}
}

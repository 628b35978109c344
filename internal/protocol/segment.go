package protocol

import "bytes"

// Segments is one page split into raw records. Slices alias the page buffer.
type Segments struct {
	Records [][]byte

	// bytes after the last record boundary, only set when the page had records
	Trailing []byte
}

// Segment skips the page header and splits the rest at record terminators.
// A terminator only ends a record when it is the end of the page or is followed
// by the next record's prefix. Record order follows the byte stream.
func Segment(raw []byte) Segments {
	if len(raw) <= HeaderSize {
		return Segments{}
	}
	body := raw[HeaderSize:]

	var seg Segments
	start, from := 0, 0
	for {
		idx := bytes.Index(body[from:], Terminator)
		if idx < 0 {
			break
		}
		end := from + idx + len(Terminator)
		if end == len(body) || bytes.HasPrefix(body[end:], RecordPrefix) {
			seg.Records = append(seg.Records, body[start:end])
			start = end
		}
		from = from + idx + 1
	}

	// A page without a single boundary is a short page, not a truncated record.
	if len(seg.Records) > 0 && start < len(body) {
		seg.Trailing = body[start:]
	}
	return seg
}

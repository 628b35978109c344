package protocol

import "ggst-replays/internal/domain"

// Page is the decode result of one response buffer. Errors are in record order.
type Page struct {
	Matches []domain.Match
	Errors  []*ParseError
}

// DecodePage segments raw and decodes every record independently. A failed
// record never affects its neighbours.
func DecodePage(raw []byte) Page {
	seg := Segment(raw)

	page := Page{Matches: make([]domain.Match, 0, len(seg.Records))}
	for _, rec := range seg.Records {
		m, perr := decode(rec)
		if perr != nil {
			page.Errors = append(page.Errors, perr)
			continue
		}
		page.Matches = append(page.Matches, m)
	}

	if len(seg.Trailing) > 0 {
		page.Errors = append(page.Errors, newParseError(seg.Trailing, ReasonTruncated, nil))
	}
	return page
}

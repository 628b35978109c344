package protocol

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"ggst-replays/internal/domain"
)

type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) next() (byte, bool) {
	if c.pos >= len(c.buf) {
		return 0, false
	}
	b := c.buf[c.pos]
	c.pos++
	return b, true
}

func (c *cursor) take(n int) ([]byte, bool) {
	if n < 0 || c.remaining() < n {
		return nil, false
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, true
}

func (c *cursor) expect(seq []byte) bool {
	if !bytes.HasPrefix(c.buf[c.pos:], seq) {
		return false
	}
	c.pos += len(seq)
	return true
}

// fieldError carries the reason back to DecodeRecord, which wraps it in a ParseError.
type fieldError struct {
	reason Reason
	err    error
}

func failAt(c *cursor, reason Reason, format string, args ...any) *fieldError {
	return &fieldError{
		reason: reason,
		err:    fmt.Errorf("offset %d: %s", c.pos, fmt.Sprintf(format, args...)),
	}
}

// DecodeRecord decodes one segmented record. Fields are read strictly in order
// and the first field that does not fit aborts the record with a *ParseError.
func DecodeRecord(raw []byte) (domain.Match, error) {
	m, perr := decode(raw)
	if perr != nil {
		return domain.Match{}, perr
	}
	return m, nil
}

func decode(raw []byte) (domain.Match, *ParseError) {
	m, fe := decodeRecord(&cursor{buf: raw})
	if fe != nil {
		return domain.Match{}, newParseError(raw, fe.reason, fe.err)
	}
	return m, nil
}

func decodeRecord(c *cursor) (domain.Match, *fieldError) {
	var m domain.Match

	if c.remaining() < len(RecordPrefix) {
		return m, failAt(c, ReasonTruncated, "%d bytes", c.remaining())
	}
	if !c.expect(RecordPrefix) {
		return m, failAt(c, ReasonBadPrefix, "got % x", c.buf[:len(RecordPrefix)])
	}

	b, ok := c.next()
	if !ok {
		return m, failAt(c, ReasonTruncated, "no floor byte")
	}
	floor, err := domain.FloorFromByte(b)
	if err != nil {
		return m, &fieldError{reason: ReasonUnrecognizedFloor, err: err}
	}
	m.Floor = floor

	var chars [2]domain.Character
	for i := range chars {
		b, ok := c.next()
		if !ok {
			return m, failAt(c, ReasonTruncated, "no character byte for P%d", i+1)
		}
		ch, err := domain.CharacterFromByte(b)
		if err != nil {
			return m, &fieldError{reason: ReasonUnrecognizedChar, err: fmt.Errorf("P%d: %w", i+1, err)}
		}
		chars[i] = ch
	}

	p1, fe := decodePlayer(c, chars[0])
	if fe != nil {
		return m, fe
	}
	if !c.expect(P2Sentinel) {
		return m, failAt(c, ReasonMissingP2Sentinel, "expected % x", P2Sentinel)
	}
	p2, fe := decodePlayer(c, chars[1])
	if fe != nil {
		return m, fe
	}
	m.Players = [2]domain.Player{p1, p2}

	b, ok = c.next()
	if !ok {
		return m, failAt(c, ReasonTruncated, "no winner byte")
	}
	switch b {
	case winnerP1:
		m.WinnerSide = domain.Player1
	case winnerP2:
		m.WinnerSide = domain.Player2
	default:
		return m, &fieldError{
			reason: ReasonUnrecognizedWinner,
			err:    fmt.Errorf("%w: winner byte 0x%02x", domain.ErrUnrecognizedValue, b),
		}
	}

	ts, fe := decodeTimestamp(c)
	if fe != nil {
		return m, fe
	}
	m.Timestamp = ts

	if !c.expect(Terminator) {
		return m, failAt(c, ReasonMissingTerminator, "expected % x", Terminator)
	}
	if c.remaining() != 0 {
		return m, failAt(c, ReasonTrailingBytes, "%d bytes left", c.remaining())
	}
	return m, nil
}

func decodePlayer(c *cursor, ch domain.Character) (domain.Player, *fieldError) {
	p := domain.Player{Character: ch}

	if !c.expect([]byte{markerPlayerID}) {
		return p, failAt(c, ReasonMalformedPlayerID, "missing id marker")
	}
	digits, ok := c.take(playerIDLen)
	if !ok {
		return p, failAt(c, ReasonTruncated, "player id")
	}
	if !isDigits(digits) {
		return p, failAt(c, ReasonMalformedPlayerID, "%q is not numeric", digits)
	}
	id, err := strconv.ParseUint(string(digits), 10, 64)
	if err != nil {
		return p, &fieldError{reason: ReasonMalformedPlayerID, err: err}
	}
	p.ID = id

	name, fe := decodeName(c)
	if fe != nil {
		return p, fe
	}
	p.Name = name

	if !c.expect([]byte{markerOnlineID}) {
		return p, failAt(c, ReasonMalformedOnlineID, "missing online id marker")
	}
	// online id plus platform byte
	if _, ok := c.take(onlineIDLen + 1); !ok {
		return p, failAt(c, ReasonTruncated, "online id")
	}
	return p, nil
}

func decodeName(c *cursor) (string, *fieldError) {
	b, ok := c.next()
	if !ok {
		return "", failAt(c, ReasonTruncated, "no name header")
	}

	var n int
	switch {
	case b&0xe0 == markerFixStr:
		n = int(b & maxFixStrLen)
	case b == markerStr8:
		l, ok := c.next()
		if !ok {
			return "", failAt(c, ReasonTruncated, "no name length")
		}
		n = int(l)
	default:
		return "", failAt(c, ReasonMalformedName, "unexpected name header 0x%02x", b)
	}

	raw, ok := c.take(n)
	if !ok {
		return "", failAt(c, ReasonMalformedName, "name of %d bytes runs past record end", n)
	}
	if !utf8.Valid(raw) {
		return "", failAt(c, ReasonInvalidNameText, "name is not valid UTF-8")
	}
	return string(raw), nil
}

func decodeTimestamp(c *cursor) (time.Time, *fieldError) {
	if !c.expect([]byte{markerTimestamp}) {
		return time.Time{}, failAt(c, ReasonMalformedTimestamp, "missing timestamp marker")
	}
	raw, ok := c.take(timestampLen)
	if !ok {
		return time.Time{}, failAt(c, ReasonTruncated, "timestamp")
	}
	ts, err := time.ParseInLocation(timestampForm, string(raw), time.UTC)
	if err != nil {
		return time.Time{}, &fieldError{reason: ReasonMalformedTimestamp, err: err}
	}
	if ts.Before(minTimestamp) || !ts.Before(maxTimestamp) {
		return time.Time{}, failAt(c, ReasonTimestampOutOfRange, "%s", ts.Format(timestampForm))
	}
	return ts, nil
}

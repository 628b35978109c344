package protocol

import (
	"encoding/hex"
	"errors"
	"fmt"

	"ggst-replays/internal/domain"
)

// Reason tags why a record failed to decode.
type Reason string

const (
	ReasonTruncated           Reason = "truncated record"
	ReasonBadPrefix           Reason = "missing record prefix"
	ReasonUnrecognizedFloor   Reason = "unrecognized floor byte"
	ReasonUnrecognizedChar    Reason = "unrecognized character byte"
	ReasonUnrecognizedWinner  Reason = "unrecognized winner byte"
	ReasonMalformedPlayerID   Reason = "malformed player id"
	ReasonMalformedName       Reason = "malformed name boundary"
	ReasonInvalidNameText     Reason = "invalid name text"
	ReasonMalformedOnlineID   Reason = "malformed online id"
	ReasonMissingP2Sentinel   Reason = "missing player 2 sentinel"
	ReasonMalformedTimestamp  Reason = "malformed timestamp"
	ReasonTimestampOutOfRange Reason = "timestamp out of range"
	ReasonMissingTerminator   Reason = "missing terminator"
	ReasonTrailingBytes       Reason = "trailing bytes after terminator"
)

// ParseError is one record that could not be decoded. Raw is a private copy of
// the record bytes as they were segmented.
type ParseError struct {
	Raw    []byte
	Reason Reason
	Err    error
}

func newParseError(raw []byte, reason Reason, err error) *ParseError {
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return &ParseError{Raw: cp, Reason: reason, Err: err}
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse replay: %s: %v (%d bytes)", e.Reason, e.Err, len(e.Raw))
	}
	return fmt.Sprintf("could not parse replay: %s (%d bytes)", e.Reason, len(e.Raw))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Unrecognized reports whether the record was well framed but carried an enum
// byte this package does not know, as opposed to corrupt framing.
func (e *ParseError) Unrecognized() bool {
	return errors.Is(e.Err, domain.ErrUnrecognizedValue)
}

func (e *ParseError) RawHex() string {
	return hex.EncodeToString(e.Raw)
}

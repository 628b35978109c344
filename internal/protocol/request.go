package protocol

import (
	"encoding/hex"
	"fmt"

	"ggst-replays/internal/domain"
)

const (
	queryKindCatalog byte = 0x01
	anyPlayer        byte = 0xff
	sortNewestFirst  byte = 0x01
)

// EncodeRequest serializes a catalog query. The token is the opaque, already
// encoded session token that opens every request envelope.
func EncodeRequest(token []byte, q domain.QueryParameters) ([]byte, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("%w: empty token", domain.ErrInvalidParameters)
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(token)+32)
	buf = appendEnvelope(buf, token)

	buf = append(buf, 0x95, queryKindCatalog, byte(q.Page()), byte(q.ReplaysPerPage()))
	buf = append(buf, 0x94, anyPlayer, q.MinFloor().Byte(), q.MaxFloor().Byte())
	if c, ok := q.Character(); ok {
		buf = append(buf, 0x91, c.Byte())
	} else {
		buf = append(buf, 0x90)
	}
	buf = append(buf, sortNewestFirst)

	return buf, nil
}

// EncodeRequestHex is EncodeRequest rendered as the lowercase hex carried in the
// form field "data".
func EncodeRequestHex(token []byte, q domain.QueryParameters) (string, error) {
	b, err := EncodeRequest(token, q)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var userStatsQuery = []byte{0x07, 0x01, 0x01, 0xff, 0xff, 0xff}

// EncodeUserStatsRequest builds the statistics request for one user id.
func EncodeUserStatsRequest(token []byte, userID string) ([]byte, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("%w: empty token", domain.ErrInvalidParameters)
	}
	if len(userID) != playerIDLen || !isDigits([]byte(userID)) {
		return nil, fmt.Errorf("%w: user id %q must be %d digits", domain.ErrInvalidParameters, userID, playerIDLen)
	}

	buf := make([]byte, 0, len(token)+40)
	buf = appendEnvelope(buf, token)
	buf = append(buf, 0x96, markerPlayerID)
	buf = append(buf, userID...)
	buf = append(buf, userStatsQuery...)
	return buf, nil
}

func appendEnvelope(buf, token []byte) []byte {
	buf = append(buf, 0x92, 0x95)
	buf = append(buf, token...)
	buf = append(buf, 0x02, markerFixStr|byte(len(clientVersion)))
	buf = append(buf, clientVersion...)
	return append(buf, 0x03)
}

func isDigits(b []byte) bool {
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(b) > 0
}

// Package protocoltest builds catalog response bytes for tests.
package protocoltest

import (
	"bytes"
	"fmt"
	"time"

	"ggst-replays/internal/domain"
	"ggst-replays/internal/protocol"
)

var header = bytes.Repeat([]byte{0x5a}, protocol.HeaderSize)

// Record encodes m the way the service does.
func Record(m domain.Match) []byte {
	return RecordWithNames(m, []byte(m.Players[0].Name), []byte(m.Players[1].Name))
}

// RecordWithNames encodes m with raw name bytes, which may be invalid text or
// contain protocol delimiters.
func RecordWithNames(m domain.Match, p1Name, p2Name []byte) []byte {
	var b bytes.Buffer
	b.Write(protocol.RecordPrefix)
	b.WriteByte(m.Floor.Byte())
	b.WriteByte(m.Players[0].Character.Byte())
	b.WriteByte(m.Players[1].Character.Byte())
	writePlayer(&b, m.Players[0].ID, p1Name)
	b.Write(protocol.P2Sentinel)
	writePlayer(&b, m.Players[1].ID, p2Name)
	b.WriteByte(byte(m.WinnerSide))
	b.WriteByte(0xb3)
	b.WriteString(m.Timestamp.UTC().Format("2006-01-02 15:04:05"))
	b.Write(protocol.Terminator)
	return b.Bytes()
}

func writePlayer(b *bytes.Buffer, id uint64, name []byte) {
	b.WriteByte(0xb2)
	b.WriteString(fmt.Sprintf("%018d", id))
	if len(name) <= 0x1f {
		b.WriteByte(0xa0 | byte(len(name)))
	} else {
		b.WriteByte(0xd9)
		b.WriteByte(byte(len(name)))
	}
	b.Write(name)
	b.WriteByte(0xaa)
	b.Write(bytes.Repeat([]byte{0x30}, 10))
	b.WriteByte(0x03)
}

// Page prefixes the records with a page header.
func Page(records ...[]byte) []byte {
	out := append([]byte{}, header...)
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}

// SampleMatch returns a distinct, well formed match for each n.
func SampleMatch(n int) domain.Match {
	return domain.Match{
		Floor:     domain.F10,
		Timestamp: time.Date(2021, 10, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute),
		Players: [2]domain.Player{
			{ID: 210611132841904307 + uint64(n), Name: fmt.Sprintf("player-%d", n), Character: domain.Sol},
			{ID: 210927151234567890 + uint64(n), Name: fmt.Sprintf("rival-%d", n), Character: domain.Ky},
		},
		WinnerSide: domain.Player1 + domain.Side(n%2),
	}
}

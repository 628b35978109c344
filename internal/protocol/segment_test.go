package protocol_test

import (
	"bytes"
	"testing"

	"ggst-replays/internal/protocol"
	"ggst-replays/internal/protocol/protocoltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentEmptyAndHeaderOnly(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "nil", raw: nil},
		{name: "short", raw: []byte{0x01, 0x02}},
		{name: "header only", raw: protocoltest.Page()},
		{name: "no terminator", raw: append(protocoltest.Page(), bytes.Repeat([]byte{0x9e}, 40)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := protocol.Segment(tt.raw)
			assert.Empty(t, seg.Records)
			assert.Empty(t, seg.Trailing)
		})
	}
}

func TestSegmentPreservesOrder(t *testing.T) {
	recs := [][]byte{
		protocoltest.Record(protocoltest.SampleMatch(1)),
		protocoltest.Record(protocoltest.SampleMatch(2)),
		protocoltest.Record(protocoltest.SampleMatch(3)),
	}

	seg := protocol.Segment(protocoltest.Page(recs...))
	require.Len(t, seg.Records, 3)
	for i := range recs {
		assert.Equal(t, recs[i], seg.Records[i])
		assert.True(t, bytes.HasSuffix(seg.Records[i], protocol.Terminator))
	}
	assert.Empty(t, seg.Trailing)
}

func TestSegmentIgnoresTerminatorInsideName(t *testing.T) {
	name := append([]byte("ab"), protocol.Terminator...)
	name = append(name, "cd"...)
	odd := protocoltest.RecordWithNames(protocoltest.SampleMatch(2), name, []byte("rival"))

	seg := protocol.Segment(protocoltest.Page(
		protocoltest.Record(protocoltest.SampleMatch(1)),
		odd,
		protocoltest.Record(protocoltest.SampleMatch(3)),
	))
	require.Len(t, seg.Records, 3)
	assert.Equal(t, odd, seg.Records[1])
}

func TestSegmentSplitsOnTerminatorFollowedByPrefix(t *testing.T) {
	name := append([]byte("ab"), protocol.Terminator...)
	name = append(name, protocol.RecordPrefix...)
	odd := protocoltest.RecordWithNames(protocoltest.SampleMatch(2), name, []byte("rival"))

	seg := protocol.Segment(protocoltest.Page(odd))
	assert.Len(t, seg.Records, 2)
}

func TestSegmentTrailingBytes(t *testing.T) {
	full := protocoltest.Record(protocoltest.SampleMatch(1))
	partial := protocoltest.Record(protocoltest.SampleMatch(2))[:30]

	seg := protocol.Segment(protocoltest.Page(full, partial))
	require.Len(t, seg.Records, 1)
	assert.Equal(t, partial, seg.Trailing)
}

package protocol_test

import (
	"testing"

	"ggst-replays/internal/protocol"
	"ggst-replays/internal/protocol/protocoltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePage(t *testing.T) {
	var recs [][]byte
	var want []int
	for i := 0; i < 5; i++ {
		recs = append(recs, protocoltest.Record(protocoltest.SampleMatch(i)))
		want = append(want, i)
	}

	page := protocol.DecodePage(protocoltest.Page(recs...))
	assert.Empty(t, page.Errors)
	require.Len(t, page.Matches, 5)
	for i, n := range want {
		assert.Equal(t, protocoltest.SampleMatch(n).Key(), page.Matches[i].Key())
		assert.Equal(t, protocoltest.SampleMatch(n).Players[0].Name, page.Matches[i].Players[0].Name)
	}
}

func TestDecodePageCorruptRecordIsLocal(t *testing.T) {
	bad := protocoltest.Record(protocoltest.SampleMatch(2))
	bad[3] = 0x40 // P1 character

	page := protocol.DecodePage(protocoltest.Page(
		protocoltest.Record(protocoltest.SampleMatch(1)),
		bad,
		protocoltest.Record(protocoltest.SampleMatch(3)),
	))

	require.Len(t, page.Matches, 2)
	assert.Equal(t, protocoltest.SampleMatch(1).Key(), page.Matches[0].Key())
	assert.Equal(t, protocoltest.SampleMatch(3).Key(), page.Matches[1].Key())

	require.Len(t, page.Errors, 1)
	assert.Equal(t, protocol.ReasonUnrecognizedChar, page.Errors[0].Reason)
	assert.True(t, page.Errors[0].Unrecognized())
	assert.Equal(t, bad, page.Errors[0].Raw)
}

func TestDecodePageDelimiterInsideName(t *testing.T) {
	name := append([]byte("ab"), protocol.Terminator...)
	name = append(name, "cd"...)
	odd := protocoltest.RecordWithNames(protocoltest.SampleMatch(2), name, []byte("rival"))

	page := protocol.DecodePage(protocoltest.Page(
		protocoltest.Record(protocoltest.SampleMatch(1)),
		odd,
	))

	assert.Len(t, page.Matches, 1)
	require.Len(t, page.Errors, 1)
	assert.Equal(t, protocol.ReasonInvalidNameText, page.Errors[0].Reason)
	assert.Equal(t, odd, page.Errors[0].Raw)
}

func TestDecodePageTruncatedTail(t *testing.T) {
	partial := protocoltest.Record(protocoltest.SampleMatch(2))[:30]

	page := protocol.DecodePage(protocoltest.Page(protocoltest.Record(protocoltest.SampleMatch(1)), partial))
	assert.Len(t, page.Matches, 1)
	require.Len(t, page.Errors, 1)
	assert.Equal(t, protocol.ReasonTruncated, page.Errors[0].Reason)
	assert.Equal(t, partial, page.Errors[0].Raw)
}

func TestDecodePageRoundTripsSampleRoster(t *testing.T) {
	m := protocoltest.SampleMatch(4)
	m.Players[1].Name = "ホシノ"
	page := protocol.DecodePage(protocoltest.Page(protocoltest.Record(m)))
	require.Len(t, page.Matches, 1)
	assert.Equal(t, m, page.Matches[0])
}

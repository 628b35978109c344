package protocol

import (
	"encoding/hex"
	"testing"

	"ggst-replays/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToken = []byte{0xb2, '2', '1', '1', '0', '2', '7', '1', '1', '3', '1', '2', '3', '0', '0', '8', '3', '8', '4'}

func TestEncodeRequestLayout(t *testing.T) {
	q := domain.NewQueryParameters().
		WithPage(2).
		WithReplaysPerPage(127).
		WithFloorRange(domain.F5, domain.Celestial)

	got, err := EncodeRequest(testToken, q)
	require.NoError(t, err)

	want := []byte{0x92, 0x95}
	want = append(want, testToken...)
	want = append(want, 0x02, 0xa5, '0', '.', '0', '.', '8', 0x03)
	want = append(want, 0x95, 0x01, 0x02, 0x7f)
	want = append(want, 0x94, 0xff, 0x04, 0x63, 0x90)
	want = append(want, 0x01)
	assert.Equal(t, want, got)
}

func TestEncodeRequestCharacterFilter(t *testing.T) {
	q := domain.NewQueryParameters().WithCharacter(domain.Nagoriyuki)

	got, err := EncodeRequest(testToken, q)
	require.NoError(t, err)

	tail := got[len(got)-4:]
	assert.Equal(t, []byte{0x63, 0x91, 0x0b, 0x01}, tail)
}

func TestEncodeRequestDeterministic(t *testing.T) {
	q := domain.NewQueryParameters().WithPage(7).WithCharacter(domain.May)

	a, err := EncodeRequest(testToken, q)
	require.NoError(t, err)
	b, err := EncodeRequest(testToken, q)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncodeRequestInjective(t *testing.T) {
	base := domain.NewQueryParameters()
	seen := make(map[string]int)

	var queries []domain.QueryParameters
	for _, page := range []int{0, 1, 99} {
		for _, n := range []int{1, 64, 127} {
			for _, floors := range [][2]domain.Floor{{domain.F1, domain.Celestial}, {domain.F1, domain.F10}, {domain.F10, domain.Celestial}} {
				q := base.WithPage(page).WithReplaysPerPage(n).WithFloorRange(floors[0], floors[1])
				queries = append(queries, q, q.WithCharacter(domain.Sol), q.WithCharacter(domain.HappyChaos))
			}
		}
	}

	for i, q := range queries {
		b, err := EncodeRequest(testToken, q)
		require.NoError(t, err)
		key := hex.EncodeToString(b)
		if prev, ok := seen[key]; ok {
			t.Fatalf("query %d encodes like query %d", i, prev)
		}
		seen[key] = i
	}
	assert.Len(t, seen, len(queries))
}

func TestEncodeRequestRejectsInvalid(t *testing.T) {
	base := domain.NewQueryParameters()
	tests := []struct {
		name  string
		token []byte
		q     domain.QueryParameters
	}{
		{name: "too many replays", token: testToken, q: base.WithReplaysPerPage(128)},
		{name: "page index overflow", token: testToken, q: base.WithPage(100)},
		{name: "page index far past byte range", token: testToken, q: base.WithPage(300)},
		{name: "inverted floor range", token: testToken, q: base.WithFloorRange(domain.F9, domain.F2)},
		{name: "missing token", token: nil, q: base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := EncodeRequest(tt.token, tt.q)
			assert.ErrorIs(t, err, domain.ErrInvalidParameters)
			assert.Nil(t, b)
		})
	}
}

func TestEncodeRequestHex(t *testing.T) {
	s, err := EncodeRequestHex(testToken, domain.NewQueryParameters())
	require.NoError(t, err)
	assert.Regexp(t, "^9295b2", s)
	assert.Regexp(t, "^7f94ff00639001$", s[len(s)-14:])
}

func TestEncodeUserStatsRequest(t *testing.T) {
	b, err := EncodeUserStatsRequest(testToken, "210611132841904307")
	require.NoError(t, err)
	assert.Equal(t, "02a5302e302e380396b2", hex.EncodeToString(b[2+len(testToken):2+len(testToken)+10]))
	assert.Equal(t, "070101ffffff", hex.EncodeToString(b[len(b)-6:]))

	_, err = EncodeUserStatsRequest(testToken, "12ab")
	assert.ErrorIs(t, err, domain.ErrInvalidParameters)
}

package server

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ggst-replays/internal/api"
	"ggst-replays/internal/domain"
	"ggst-replays/internal/protocol"
	"ggst-replays/internal/protocol/protocoltest"
	"ggst-replays/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	pages map[string][]byte
	err   error
}

func (f *stubFetcher) Token() []byte { return []byte{0xb2, 0x30} }

func (f *stubFetcher) FetchReplayPage(ctx context.Context, body []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if raw, ok := f.pages[hex.EncodeToString(body)]; ok {
		return raw, nil
	}
	return protocoltest.Page(), nil
}

type stubRecent struct {
	matches []domain.Match
	limit   int
}

func (s *stubRecent) Recent(ctx context.Context, limit int) ([]domain.Match, error) {
	s.limit = limit
	return s.matches, nil
}

func newTestServer(t *testing.T, fetcher *stubFetcher, recent RecentReplays) *httptest.Server {
	t.Helper()
	replays := service.NewReplayService(fetcher, nil, zerolog.Nop())
	users := service.NewUserService(nil, zerolog.Nop())

	path, handler := NewCatalogServer(replays, users, recent).Handler()
	mux := http.NewServeMux()
	mux.Handle(path, handler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, procedure string, body any, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+procedure, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestGetReplays(t *testing.T) {
	q := domain.NewQueryParameters().WithFloorRange(domain.F10, domain.Celestial).WithCharacter(domain.Sol)
	body, err := protocol.EncodeRequest([]byte{0xb2, 0x30}, q.WithPage(0).WithReplaysPerPage(2))
	require.NoError(t, err)

	bad := protocoltest.Record(protocoltest.SampleMatch(3))
	bad[2] = 0x50
	fetcher := &stubFetcher{pages: map[string][]byte{
		hex.EncodeToString(body): protocoltest.Page(
			protocoltest.Record(protocoltest.SampleMatch(1)),
			bad,
		),
	}}
	srv := newTestServer(t, fetcher, nil)

	var resp GetReplaysResponse
	status := call(t, srv, getReplaysProcedure, GetReplaysRequest{
		Pages:          1,
		ReplaysPerPage: 2,
		MinFloor:       "F10",
		MaxFloor:       "celestial",
		Character:      "SOL",
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, resp.Matches, 1)
	m := resp.Matches[0]
	assert.Equal(t, "F10", m.Floor)
	assert.Equal(t, "2021-10-01T12:01:00Z", m.Timestamp)
	assert.Equal(t, "210611132841904308", m.Players[0].ID)
	assert.Equal(t, "SOL", m.Players[0].Character)
	assert.Equal(t, "P2", m.Winner)

	require.Len(t, resp.Failures, 1)
	assert.Equal(t, string(protocol.ReasonUnrecognizedFloor), resp.Failures[0].Reason)
	assert.Equal(t, hex.EncodeToString(bad), resp.Failures[0].Raw)
}

func TestGetReplaysInvalidArgument(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)

	status := call(t, srv, getReplaysProcedure, GetReplaysRequest{Pages: 1, ReplaysPerPage: 500}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = call(t, srv, getReplaysProcedure, GetReplaysRequest{Pages: 1, ReplaysPerPage: 5, MinFloor: "F99"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetReplaysTransportFailure(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{err: &api.TransportError{URL: "x", Status: 500}}, nil)

	status := call(t, srv, getReplaysProcedure, GetReplaysRequest{Pages: 2, ReplaysPerPage: 5}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestGetRecent(t *testing.T) {
	recent := &stubRecent{matches: []domain.Match{protocoltest.SampleMatch(2)}}
	srv := newTestServer(t, &stubFetcher{}, recent)

	var resp GetRecentResponse
	status := call(t, srv, getRecentProcedure, GetRecentRequest{Limit: 1000}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, resp.Matches, 1)
	assert.Equal(t, 50, recent.limit)
}

func TestGetRecentDisabled(t *testing.T) {
	srv := newTestServer(t, &stubFetcher{}, nil)
	status := call(t, srv, getRecentProcedure, GetRecentRequest{}, nil)
	assert.Equal(t, http.StatusNotImplemented, status)
}

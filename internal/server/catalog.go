package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ggst-replays/internal/api"
	"ggst-replays/internal/constants"
	"ggst-replays/internal/domain"
	"ggst-replays/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const CatalogPath = "/ggst.v1.ReplayCatalog/"

const (
	getReplaysProcedure = CatalogPath + "GetReplays"
	getRecentProcedure  = CatalogPath + "GetRecent"
	getUserProcedure    = CatalogPath + "GetUser"
)

// jsonCodec lets connect serve plain Go structs; there are no generated messages.
type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type RecentReplays interface {
	Recent(ctx context.Context, limit int) ([]domain.Match, error)
}

type CatalogServer struct {
	replays *service.ReplayService
	users   *service.UserService
	recent  RecentReplays
}

func NewCatalogServer(replays *service.ReplayService, users *service.UserService, recent RecentReplays) *CatalogServer {
	return &CatalogServer{replays: replays, users: users, recent: recent}
}

// Handler returns the mount path and handler for all catalog procedures.
func (s *CatalogServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(getReplaysProcedure, connect.NewUnaryHandler(getReplaysProcedure, s.GetReplays, opts...))
	mux.Handle(getRecentProcedure, connect.NewUnaryHandler(getRecentProcedure, s.GetRecent, opts...))
	mux.Handle(getUserProcedure, connect.NewUnaryHandler(getUserProcedure, s.GetUser, opts...))
	return CatalogPath, mux
}

type GetReplaysRequest struct {
	Pages          int    `json:"pages"`
	ReplaysPerPage int    `json:"replays_per_page"`
	MinFloor       string `json:"min_floor,omitempty"`
	MaxFloor       string `json:"max_floor,omitempty"`
	Character      string `json:"character,omitempty"`
}

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
}

type Match struct {
	Floor     string    `json:"floor"`
	Timestamp string    `json:"timestamp"`
	Players   [2]Player `json:"players"`
	Winner    string    `json:"winner"`
}

type Failure struct {
	Reason string `json:"reason"`
	Error  string `json:"error"`
	Raw    string `json:"raw"`
}

type GetReplaysResponse struct {
	RunID    string    `json:"run_id"`
	Pages    int       `json:"pages"`
	Matches  []Match   `json:"matches"`
	Failures []Failure `json:"failures"`
}

func (s *CatalogServer) GetReplays(ctx context.Context, req *connect.Request[GetReplaysRequest]) (*connect.Response[GetReplaysResponse], error) {
	q, err := queryFromRequest(req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	result, err := s.replays.CollectAndStore(ctx, req.Msg.Pages, req.Msg.ReplaysPerPage, q)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int("pages", req.Msg.Pages).Msg("get replays failed")
		return nil, toConnectError(err)
	}

	resp := &GetReplaysResponse{
		RunID:    result.RunID,
		Pages:    result.Pages,
		Matches:  toMatches(result.Matches),
		Failures: make([]Failure, 0, len(result.Errors)),
	}
	for _, perr := range result.Errors {
		resp.Failures = append(resp.Failures, Failure{
			Reason: string(perr.Reason),
			Error:  perr.Error(),
			Raw:    perr.RawHex(),
		})
	}
	return connect.NewResponse(resp), nil
}

type GetRecentRequest struct {
	Limit int `json:"limit"`
}

type GetRecentResponse struct {
	Matches []Match `json:"matches"`
}

func (s *CatalogServer) GetRecent(ctx context.Context, req *connect.Request[GetRecentRequest]) (*connect.Response[GetRecentResponse], error) {
	if s.recent == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("replay storage is disabled"))
	}

	limit := req.Msg.Limit
	if limit <= 0 || limit > constants.RecentReplaysLimit {
		limit = constants.RecentReplaysLimit
	}

	matches, err := s.recent.Recent(ctx, limit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&GetRecentResponse{Matches: toMatches(matches)}), nil
}

type GetUserRequest struct {
	SteamID string `json:"steam_id"`
}

type GetUserResponse struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

func (s *CatalogServer) GetUser(ctx context.Context, req *connect.Request[GetUserRequest]) (*connect.Response[GetUserResponse], error) {
	user, err := s.users.Lookup(ctx, req.Msg.SteamID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetUserResponse{UserID: user.ID, Name: user.Name, Comment: user.Comment}), nil
}

func queryFromRequest(msg *GetReplaysRequest) (domain.QueryParameters, error) {
	q := domain.NewQueryParameters()

	lo, hi := q.MinFloor(), q.MaxFloor()
	var err error
	if msg.MinFloor != "" {
		if lo, err = domain.ParseFloor(msg.MinFloor); err != nil {
			return q, err
		}
	}
	if msg.MaxFloor != "" {
		if hi, err = domain.ParseFloor(msg.MaxFloor); err != nil {
			return q, err
		}
	}
	q = q.WithFloorRange(lo, hi)

	if msg.Character != "" {
		c, err := domain.CharacterFromCode(msg.Character)
		if err != nil {
			return q, err
		}
		q = q.WithCharacter(c)
	}
	return q, nil
}

func toMatches(matches []domain.Match) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		var players [2]Player
		for i, p := range m.Players {
			players[i] = Player{
				ID:        strconv.FormatUint(p.ID, 10),
				Name:      p.Name,
				Character: p.Character.Code(),
			}
		}
		out = append(out, Match{
			Floor:     m.Floor.String(),
			Timestamp: m.Timestamp.Format(time.RFC3339),
			Players:   players,
			Winner:    m.WinnerSide.String(),
		})
	}
	return out
}

func toConnectError(err error) error {
	var terr *api.TransportError
	switch {
	case errors.Is(err, domain.ErrInvalidParameters):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.As(err, &terr):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

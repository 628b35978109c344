package service

import (
	"context"
	"fmt"
	"time"

	"ggst-replays/internal/constants"
	"ggst-replays/internal/domain"
	"ggst-replays/internal/protocol"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type CatalogFetcher interface {
	Token() []byte
	FetchReplayPage(ctx context.Context, body []byte) ([]byte, error)
}

type ReplayStore interface {
	UpsertBatch(ctx context.Context, matches []domain.Match) (int, error)
	SaveFailures(ctx context.Context, runID string, failures []*protocol.ParseError) error
}

type ReplayService struct {
	fetcher CatalogFetcher
	store   ReplayStore
	logger  zerolog.Logger
}

// NewReplayService accepts a nil store, in which case results are not persisted.
func NewReplayService(fetcher CatalogFetcher, store ReplayStore, logger zerolog.Logger) *ReplayService {
	return &ReplayService{fetcher: fetcher, store: store, logger: logger}
}

type Result struct {
	RunID string

	// deduplicated, newest first
	Matches []domain.Match

	// page-major: all failures of page 0, then page 1, ...; record order within a page
	Errors []*protocol.ParseError

	Pages int
}

// Collect fetches pages 0..pages-1 of the catalog and merges them. Pages are
// fetched concurrently; any transport failure or cancellation fails the whole
// call and nothing decoded so far is returned. Deduplication may leave fewer
// matches than pages*perPage.
func (s *ReplayService) Collect(ctx context.Context, pages, perPage int, q domain.QueryParameters) (*Result, error) {
	bodies, err := s.encodePages(pages, perPage, q)
	if err != nil {
		return nil, err
	}

	runID, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	logger := s.logger.With().Str("run_id", runID).Logger()

	logger.Info().
		Int("pages", pages).
		Int("replays_per_page", perPage).
		Str("min_floor", q.MinFloor().String()).
		Str("max_floor", q.MaxFloor().String()).
		Msg("collecting replays")

	start := time.Now()
	decoded := make([]protocol.Page, len(bodies))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.MaxConcurrentPages)
	for i, body := range bodies {
		i, body := i, body
		g.Go(func() error {
			raw, err := s.fetcher.FetchReplayPage(gCtx, body)
			if err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", i, err)
			}
			// each goroutine owns exactly one slot
			decoded[i] = protocol.DecodePage(raw)

			logger.Debug().
				Int("page", i).
				Int("bytes", len(raw)).
				Int("matches", len(decoded[i].Matches)).
				Int("failures", len(decoded[i].Errors)).
				Msg("page decoded")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("replay collection failed")
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := merge(decoded)
	result.RunID = runID

	for _, perr := range result.Errors {
		logger.Warn().
			Str("reason", string(perr.Reason)).
			Err(perr.Err).
			Str("raw", perr.RawHex()).
			Msg("could not parse replay")
	}

	logger.Info().
		Int("matches", len(result.Matches)).
		Int("failures", len(result.Errors)).
		Dur("duration", time.Since(start)).
		Msg("replays collected")

	return result, nil
}

// CollectAndStore is Collect followed by persisting the result when a store is
// configured. Storage failures are logged and do not fail the call.
func (s *ReplayService) CollectAndStore(ctx context.Context, pages, perPage int, q domain.QueryParameters) (*Result, error) {
	result, err := s.Collect(ctx, pages, perPage, q)
	if err != nil || s.store == nil {
		return result, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	inserted, err := s.store.UpsertBatch(dbCtx, result.Matches)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", result.RunID).Msg("failed to store matches")
	} else {
		s.logger.Debug().Str("run_id", result.RunID).Int("inserted", inserted).Msg("matches stored")
	}

	if err := s.store.SaveFailures(dbCtx, result.RunID, result.Errors); err != nil {
		s.logger.Error().Err(err).Str("run_id", result.RunID).Msg("failed to store parse failures")
	}

	return result, nil
}

func (s *ReplayService) encodePages(pages, perPage int, q domain.QueryParameters) ([][]byte, error) {
	if pages < 1 || pages > domain.MaxPages {
		return nil, fmt.Errorf("%w: page count %d must be in [1, %d]", domain.ErrInvalidParameters, pages, domain.MaxPages)
	}
	if perPage < 1 || perPage > domain.MaxReplaysPerPage {
		return nil, fmt.Errorf("%w: replays per page %d must be in [1, %d]", domain.ErrInvalidParameters, perPage, domain.MaxReplaysPerPage)
	}

	token := s.fetcher.Token()
	bodies := make([][]byte, pages)
	for i := range bodies {
		body, err := protocol.EncodeRequest(token, q.WithPage(i).WithReplaysPerPage(perPage))
		if err != nil {
			return nil, err
		}
		bodies[i] = body
	}
	return bodies, nil
}

// merge is the only writer of the result; it runs after every page has resolved.
func merge(pages []protocol.Page) *Result {
	set := domain.NewMatchSet()
	var errs []*protocol.ParseError
	for _, p := range pages {
		for _, m := range p.Matches {
			set.Add(m)
		}
		errs = append(errs, p.Errors...)
	}

	return &Result{
		Matches: set.Slice(),
		Errors:  errs,
		Pages:   len(pages),
	}
}

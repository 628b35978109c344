package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ggst-replays/internal/constants"
	"ggst-replays/internal/domain"
	fxmodules "ggst-replays/internal/fx"
	"ggst-replays/internal/service"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	pages := flag.Int("pages", 1, "number of catalog pages to fetch")
	perPage := flag.Int("per-page", domain.MaxReplaysPerPage, "replays per page")
	minFloor := flag.String("min-floor", "F1", "lowest floor (F1..F10, Celestial)")
	maxFloor := flag.String("max-floor", "Celestial", "highest floor (F1..F10, Celestial)")
	character := flag.String("character", "", "three-letter character code, e.g. SOL")
	flag.Parse()

	q, err := buildQuery(*minFloor, *maxFloor, *character)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var (
		replays *service.ReplayService
		db      *sql.DB
		logger  zerolog.Logger
	)
	app := fx.New(
		fxmodules.Core,
		fx.NopLogger,
		fx.Populate(&replays, &db, &logger),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	result, err := replays.CollectAndStore(ctx, *pages, *perPage, q)
	if err != nil {
		logger.Error().Err(err).Msg("fetch failed")
		if errors.Is(err, domain.ErrInvalidParameters) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	printMatches(result)
	printFailures(result)
}

func buildQuery(minFloor, maxFloor, character string) (domain.QueryParameters, error) {
	lo, err := domain.ParseFloor(minFloor)
	if err != nil {
		return domain.QueryParameters{}, err
	}
	hi, err := domain.ParseFloor(maxFloor)
	if err != nil {
		return domain.QueryParameters{}, err
	}

	q := domain.NewQueryParameters().WithFloorRange(lo, hi)
	if character != "" {
		c, err := domain.CharacterFromCode(character)
		if err != nil {
			return domain.QueryParameters{}, err
		}
		q = q.WithCharacter(c)
	}
	return q, q.Validate()
}

func printMatches(result *service.Result) {
	fmt.Println()

	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"Played", "Floor", "Player 1", "Char", "Player 2", "Char", "Winner"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, m := range result.Matches {
		tw.Append([]string{
			m.Timestamp.Format("2006-01-02 15:04:05"),
			m.Floor.String(),
			m.Players[0].Name,
			m.Players[0].Character.Code(),
			m.Players[1].Name,
			m.Players[1].Character.Code(),
			m.WinnerSide.String(),
		})
	}

	tw.Render()
	fmt.Printf("%d matches from %d pages (run %s)\n", len(result.Matches), result.Pages, result.RunID)
}

func printFailures(result *service.Result) {
	if len(result.Errors) == 0 {
		return
	}
	fmt.Println()

	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"#", "Reason", "Bytes"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for i, perr := range result.Errors {
		tw.Append([]string{
			strconv.Itoa(i + 1),
			string(perr.Reason),
			strconv.Itoa(len(perr.Raw)),
		})
	}

	tw.Render()
	fmt.Println()
}

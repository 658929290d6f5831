package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediahub/internal/auth"
	"mediahub/internal/catalog"
	"mediahub/internal/library"
	"mediahub/internal/microservices/http-api/service"
	"mediahub/internal/rating"
)

var versusKind string

var versusCmd = &cobra.Command{
	Use:   "versus",
	Short: "Rank your library by picking the better of two",
	Long: `Start an interactive Versus session over your watched movies (--kind movie)
or played games (--kind game). Answer each pair with:
  a / b  pick the left or right item
  s      skip this pair
  q      finish and show how your ranking changed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := catalog.Kind(versusKind)
		if !kind.Valid() {
			return fmt.Errorf("invalid --kind %q: use movie or game", versusKind)
		}

		a, session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		st, err := a.Versus.Start(ctx, session, kind)
		if errors.Is(err, rating.ErrInsufficientItems) {
			return fmt.Errorf("add at least two %ss to your library first", kind)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		summary, err := playVersus(ctx, a.Versus, session, st, cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		printSummary(out, summary)
		return nil
	},
}

// playVersus prompts for pairs until the input ends or the user quits, then
// finishes the session. Only store failures are retried.
func playVersus(ctx context.Context, svc service.VersusService, session auth.Context, st service.VersusState, in io.Reader, out io.Writer) (rating.Summary, error) {
	scanner := bufio.NewScanner(in)
	for st.Pair != nil {
		fmt.Fprintf(out, "\n#%d  [a] %s   vs   [b] %s\n> ", st.Comparisons+1, describe(st.Pair.A), describe(st.Pair.B))
		if !scanner.Scan() {
			break
		}
		var (
			next service.VersusState
			err  error
		)
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "a":
			next, err = svc.Choose(ctx, session, st.ID, rating.WinnerA)
		case "b":
			next, err = svc.Choose(ctx, session, st.ID, rating.WinnerB)
		case "s":
			next, err = svc.Skip(ctx, session, st.ID)
		case "q":
			st.Pair = nil
			continue
		default:
			fmt.Fprintln(out, "answer a, b, s or q")
			continue
		}
		var storeErr *library.StoreError
		switch {
		case errors.As(err, &storeErr):
			// the same pair is offered again
			fmt.Fprintf(out, "could not save: %v\n", err)
		case err != nil:
			return rating.Summary{}, err
		}
		st = next
	}
	return svc.Finish(ctx, session, st.ID)
}

func describe(it rating.Item) string {
	if it.Rating == nil {
		return it.Title + " (unrated)"
	}
	return fmt.Sprintf("%s (%.1f)", it.Title, *it.Rating)
}

func printSummary(w io.Writer, s rating.Summary) {
	fmt.Fprintf(w, "\n%d comparisons\n", s.Comparisons)
	if len(s.Changes) == 0 {
		return
	}
	rows := make([][]string, 0, len(s.Changes))
	for _, c := range s.Changes {
		rows = append(rows, []string{
			c.Item.Title,
			strconv.FormatFloat(c.OldRating, 'f', 1, 64),
			strconv.FormatFloat(c.NewRating, 'f', 1, 64),
			strconv.Itoa(c.OldPosition),
			strconv.Itoa(c.NewPosition),
			movement(c.OldPosition, c.NewPosition),
		})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Title", "Old", "New", "Was #", "Now #", ""},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
}

func movement(oldPos, newPos int) string {
	switch {
	case newPos < oldPos:
		return fmt.Sprintf("▲ %d", oldPos-newPos)
	case newPos > oldPos:
		return fmt.Sprintf("▼ %d", newPos-oldPos)
	}
	return "="
}

func init() {
	versusCmd.Flags().StringVarP(&versusKind, "kind", "k", string(catalog.KindMovie), "movie or game")
}

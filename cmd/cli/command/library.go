package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediahub/internal/library"
	"mediahub/internal/microservices/http-api/service"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Library commands",
	Long:  `Show and edit your watched movies, watchlist and played games.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list [watched|watchlist|played]",
	Short: "List one of your lists, best rated first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Library.List(cmd.Context(), session, service.ListName(args[0]))
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing here yet.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderEntries(entries))
		return nil
	},
}

var libraryRateCmd = &cobra.Command{
	Use:   "rate [watched|played] [id] [rating]",
	Short: "Set a rating between 0 and 10",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		value, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid rating: %w", err)
		}
		if value < 0 || value > 10 {
			return fmt.Errorf("rating must be between 0 and 10")
		}

		a, session, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Library.Rate(cmd.Context(), session, service.ListName(args[0]), id, value); err != nil {
			return fmt.Errorf("failed to rate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Rating saved")
		return nil
	},
}

func renderEntries(entries []library.Entry) string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		r := "-"
		if e.Rating != nil {
			r = strconv.FormatFloat(*e.Rating, 'f', 1, 64)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), strconv.FormatInt(e.ID, 10), e.Title, e.ReleaseDate, r})
	}
	return renderTable(
		[]string{"#", "ID", "Title", "Released", "Rating"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
	)
}

func init() {
	libraryCmd.AddCommand(libraryListCmd, libraryRateCmd)
}

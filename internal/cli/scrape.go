package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jchaskell/cr/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <s|h> <dir> <start> <end>",
	Short: "Download transcripts for a date range",
	Long: `Fetches every day from start through end (MM-DD-YYYY) for one chamber and
saves each transcript as <dir>/<S|H><YYYY-MM-DD>.txt. Days without a
Congressional Record are skipped.`,
	Args: cobra.ExactArgs(4),
	RunE: runScrape,
}

var dailyCmd = &cobra.Command{
	Use:   "daily [dir]",
	Short: "Download transcripts published since the last run",
	Long: `Resumes from the day after the newest transcript in dir (DATA_DIR by
default) and fetches through today, House first and then Senate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDaily,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(dailyCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	chamber, err := scrape.ParseChamber(args[0])
	if err != nil {
		return err
	}
	start, err := scrape.ParseDate(args[2])
	if err != nil {
		return err
	}
	end, err := scrape.ParseDate(args[3])
	if err != nil {
		return err
	}
	days := scrape.DateRange(start, end)
	if len(days) == 0 {
		return fmt.Errorf("end %s is before start %s", args[3], args[2])
	}

	client := newClient(newLogger(cmd))
	written, err := client.SaveRange(commandContext(cmd), chamber, args[1], days)
	cmd.Printf("Saved %d of %d days to %s\n", len(written), len(days), args[1])
	return err
}

func runDaily(cmd *cobra.Command, args []string) error {
	dir := dirArg(args)
	start, err := scrape.ResumeDate(dir)
	if err != nil {
		return err
	}
	days := scrape.DateRange(start, time.Now())
	if len(days) == 0 {
		cmd.Println("Already up to date.")
		return nil
	}

	client := newClient(newLogger(cmd))
	for _, chamber := range []scrape.Chamber{scrape.House, scrape.Senate} {
		written, err := client.SaveRange(commandContext(cmd), chamber, dir, days)
		cmd.Printf("%s: saved %d of %d days\n", chamber.Name(), len(written), len(days))
		if err != nil {
			return fmt.Errorf("%s: %w", chamber.Name(), err)
		}
	}
	return nil
}

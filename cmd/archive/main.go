package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openconsent/cookie-consent-service/internal/archive"
	"github.com/openconsent/cookie-consent-service/internal/consent/codec"
	"github.com/openconsent/cookie-consent-service/internal/system/config"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
	"github.com/openconsent/cookie-consent-service/internal/system/log"
	"github.com/spf13/cobra"
)

const configFile = "config/deployment.yaml"

// cutoffMenu is the fixed set of relative offsets offered when no explicit
// cutoff date is supplied.
var cutoffMenu = []string{
	"1 week ago",
	"1 month ago",
	"3 months ago",
	"6 months ago",
	"12 months ago",
	"24 months ago",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "consent-archive",
	Short: "Archive aged cookie-consent audit records",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Export and purge consent records older than a cutoff date",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, _ := cmd.Flags().GetString("home")
		before, _ := cmd.Flags().GetString("before")
		format, _ := cmd.Flags().GetString("output-format")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if home == "" {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			home = dir
		}

		cfg, err := config.LoadConfig(home, configFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if err := config.InitializeRuntime(home, cfg); err != nil {
			return fmt.Errorf("initializing runtime: %w", err)
		}
		if err := log.Init(cfg.Log.LogLevel); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		cutoff, err := resolveCutoff(before)
		if err != nil {
			return err
		}

		result, err := archive.GetArchiver().Run(cutoff, format, dryRun)
		if err != nil {
			return err
		}

		switch {
		case len(result.Records) == 0:
			fmt.Printf("No consent records older than %s.\n", cutoff.Format(constants.ExportDateFormat))
		case result.DryRun:
			fmt.Printf("Dry run: %d record(s) would be archived:\n", len(result.Records))
			archive.Display(os.Stdout, result.Records)
		default:
			fmt.Printf("Archived %d record(s) to %s\n", len(result.Records), result.ExportPath)
		}
		return nil
	},
}

// resolveCutoff parses the explicit cutoff date, or prompts with the fixed
// menu of relative offsets when none is given.
func resolveCutoff(before string) (time.Time, error) {
	if before != "" {
		cutoff, err := time.Parse(constants.ExportDateFormat, before)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid cutoff date %q: expected YYYY-MM-DD", before)
		}
		return cutoff, nil
	}

	fmt.Println("Archive records older than:")
	for i, offset := range cutoffMenu {
		fmt.Printf("  [%d] %s\n", i+1, offset)
	}
	fmt.Print("Choice: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return time.Time{}, fmt.Errorf("reading choice: %w", err)
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(cutoffMenu) {
		return time.Time{}, fmt.Errorf("invalid choice %q", strings.TrimSpace(line))
	}

	return codec.ResolveOffset(time.Now(), cutoffMenu[choice-1])
}

func init() {
	runCmd.Flags().String("home", "", "Installation root (defaults to the working directory)")
	runCmd.Flags().String("before", "", "Cutoff date (YYYY-MM-DD); records strictly older are archived")
	runCmd.Flags().String("output-format", "log", "Export format: log, csv or html")
	runCmd.Flags().BoolP("dry-run", "n", false, "List matching records without exporting or deleting")
	rootCmd.AddCommand(runCmd)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/faithogundimu/core/internal/config"
	"github.com/faithogundimu/core/internal/coordinator"
	"github.com/faithogundimu/core/internal/reason"
	"github.com/faithogundimu/core/pkg/models"
)

var (
	runRosterPath string
	runOutputDir  string
	runNoGenomics bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Prepare every case on the roster and write the dashboard",
	Long: `Run the full readiness pass over the MDT roster.

Each patient's five data domains are fetched in parallel and synthesized into
a readiness verdict. Patients with validated mutation data then get a genomic
intelligence report. The dashboard is written to the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runRoster(cmd.Context(), cfg)
	},
}

func init() {
	runCmd.Flags().StringVar(&runRosterPath, "roster", "", "roster file (default <data dir>/mdt_roster.json)")
	runCmd.Flags().StringVar(&runOutputDir, "output", "", "output directory (default from config)")
	runCmd.Flags().BoolVar(&runNoGenomics, "no-genomics", false, "skip the genomic intelligence pipeline")
}

func runRoster(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rosterPath := runRosterPath
	if rosterPath == "" {
		rosterPath = cfg.Data.Path("mdt_roster.json")
	}
	roster, err := coordinator.LoadRoster(rosterPath)
	if err != nil {
		return err
	}

	logger, err := coordinator.NewDebugLogger(cfg.Orchestra.DebugLog)
	if err != nil {
		return err
	}
	defer logger.Close()

	emitter := coordinator.NewEventEmitter(256)
	coord, llm, cleanup, err := buildEngine(cfg, logger, emitter, !runNoGenomics)
	if err != nil {
		return err
	}
	defer cleanup()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printEvents(emitter.Events())
	}()

	dashboard, err := coord.Run(ctx, roster)
	emitter.Close()
	wg.Wait()
	if err != nil {
		return err
	}

	outputDir := runOutputDir
	if outputDir == "" {
		outputDir = cfg.Data.OutputDir
	}
	path, err := coordinator.SaveDashboard(dashboard, outputDir)
	if err != nil {
		return err
	}

	printSummary(dashboard)
	printTokenUsage(llm)
	fmt.Printf("\nDashboard written to %s\n", path)
	return nil
}

// printTokenUsage reports model spend for the run. No-op when the
// deterministic rule reasoner handled the run.
func printTokenUsage(llm *reason.Client) {
	if llm == nil {
		return
	}
	route := "Anthropic API"
	if llm.IsBedrock() {
		route = "AWS Bedrock"
	}
	in, out := llm.Tracker().Total()
	fmt.Printf("\nModel usage: %d call(s) via %s, %d input / %d output tokens\n",
		llm.Tracker().Calls(), route, in, out)
}

// printEvents renders run progress as it happens.
func printEvents(events <-chan coordinator.Event) {
	for e := range events {
		switch e.Type {
		case coordinator.EventRunStarted:
			fmt.Printf("Preparing cases: %s\n", e.Message)
		case coordinator.EventCaseCompleted:
			fmt.Printf("  %s patient %s\n", statusBadge(e.Status), e.PatientID)
		case coordinator.EventCaseFailed:
			color.Red("  ✗ patient %s: %v", e.PatientID, e.Error)
		case coordinator.EventGenomicsCompleted:
			fmt.Printf("  ◆ patient %s: genomic report ready\n", e.PatientID)
		}
	}
}

// printSummary renders the roster rollup and triage list.
func printSummary(dashboard models.Dashboard) {
	fmt.Println()
	bold := color.New(color.Bold)
	bold.Printf("MDT %s", dashboard.Meeting.Date)
	if dashboard.Meeting.Specialty != "" {
		fmt.Printf(" (%s)", dashboard.Meeting.Specialty)
	}
	fmt.Println()

	s := dashboard.Summary
	fmt.Printf("%d patients: ", s.TotalPatients)
	color.New(color.FgGreen).Printf("%d ready", s.Ready)
	fmt.Print(", ")
	color.New(color.FgYellow).Printf("%d in progress", s.InProgress)
	fmt.Print(", ")
	color.New(color.FgRed).Printf("%d blocked", s.Blocked)
	fmt.Printf(" (%.1f%% ready)\n", s.ReadinessPct)

	if len(dashboard.Blockers) > 0 {
		fmt.Println("\nBlockers:")
		for _, b := range dashboard.Blockers {
			fmt.Printf("  [%s] %s %s: %s\n", b.Severity, b.PatientID, b.Domain, b.Description)
			fmt.Printf("      → %s\n", b.SuggestedAction)
		}
	}
}

func statusBadge(status models.OverallStatus) string {
	switch status {
	case models.StatusReady:
		return color.GreenString("✓ READY")
	case models.StatusBlocked:
		return color.RedString("✗ BLOCKED")
	default:
		return color.YellowString("… IN_PROGRESS")
	}
}

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePulse/internal/cache"
	"github.com/OpenTraceLab/OpenTracePulse/pkg/extrapolate"
)

var (
	// Flags for count command
	countPresses  int64
	countNoCycles bool
	countOutput   string
)

var countCmd = &cobra.Command{
	Use:   "count <input>",
	Short: "Count low and high pulses over a fixed number of presses",
	Long: `Press the button a fixed number of times from the initial state and
report the number of low pulses times the number of high pulses.

Every press starts with the button's low pulse to the broadcaster, which is
counted. Once the network returns to a state it has been in before, the rest
of the presses are computed from the repeating cycle instead of simulated.

Examples:
  pulse count testdata/chain.txt
  pulse count testdata/inverter.txt --presses 5000 --no-cycles
  pulse count input.txt --output report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)

	countCmd.Flags().Int64VarP(&countPresses, "presses", "n", -1,
		"number of presses (default from config, 1000)")
	countCmd.Flags().BoolVar(&countNoCycles, "no-cycles", false,
		"simulate every press instead of extrapolating from a detected cycle")
	countCmd.Flags().StringVarP(&countOutput, "output", "o", "",
		"output JSON report path")
}

func runCount(cmd *cobra.Command, args []string) (err error) {
	startTime := time.Now()

	s, err := openSession(args[0])
	if err != nil {
		return err
	}
	status := "success"
	defer func() {
		if err != nil {
			status = "error"
		}
		if ferr := s.finish(extrapolate.QueryAggregate, status); ferr != nil && err == nil {
			err = ferr
		}
	}()

	cfg := settings.Extrapolate()
	if countPresses >= 0 {
		cfg.Presses = countPresses
	}
	if countNoCycles {
		cfg.DetectCycles = false
	}

	progress, stop := startProgress()
	r, err := s.runner(cfg, progress)
	if err != nil {
		stop()
		return fmt.Errorf("invalid configuration: %w", err)
	}

	report := extrapolate.NewReport(extrapolate.QueryAggregate, r.Config())
	report.Input = s.path
	report.Digest = s.digest

	key := cache.Key(s.digest, extrapolate.QueryAggregate,
		strconv.FormatInt(r.Config().Presses, 10),
		strconv.FormatBool(r.Config().DetectCycles))
	var res extrapolate.AggregateResult
	if s.lookup(key, &res) {
		stop()
		status = "cached"
		report.Cached = true
	} else {
		ctx, cancel := commandContext(cmd.Context())
		defer cancel()

		out, err := r.Aggregate(ctx)
		stop()
		if err != nil {
			return fmt.Errorf("count failed: %w", err)
		}
		res = *out
		s.store(key, res)
	}

	report.Aggregate = &res
	report.Elapsed = time.Since(startTime)
	if err := printAggregate(report); err != nil {
		return err
	}

	if countOutput != "" {
		return writeReport(report, countOutput)
	}
	return nil
}

func printAggregate(report *extrapolate.Report) error {
	res := report.Aggregate
	if verbose {
		fmt.Println("╔════════════════════════════════════════════════════════════════╗")
		fmt.Println("║ Pulse Count                                                    ║")
		fmt.Println("╚════════════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Printf("Run ID:         %s\n", report.RunID)
	}

	fmt.Printf("Presses:        %d\n", res.Presses)
	fmt.Printf("Low pulses:     %d\n", res.Low)
	fmt.Printf("High pulses:    %d\n", res.High)
	if res.CycleLength > 0 {
		fmt.Printf("State cycle:    length %d from press %d (simulated %d presses)\n",
			res.CycleLength, res.CycleStart, res.Simulated)
	}
	if report.Cached {
		fmt.Println("Source:         cache")
	}
	if verbose {
		fmt.Printf("Time elapsed:   %s\n", report.Elapsed.Round(time.Millisecond))
	}
	answer, err := report.Answer()
	if err != nil {
		return err
	}
	fmt.Printf("Answer:         %d\n", answer)
	return nil
}

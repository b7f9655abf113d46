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
	// Flags for min command
	minTarget     string
	minMaxPresses int64
	minNoVerify   bool
	minNoFallback bool
	minSequential bool
	minOutput     string
)

var minCmd = &cobra.Command{
	Use:   "min <input>",
	Short: "Find the fewest presses until a module receives a low pulse",
	Long: `Find the first press after which the target module receives a low pulse.

When the target sits behind a conjunction combining independent counters,
each counter is measured on its own copy of the network and the answer is the
least common multiple of their periods. Other networks are simulated press by
press up to --max-presses unless --no-fallback is given.

Examples:
  pulse min testdata/counters.txt
  pulse min input.txt --target rx --max-presses 100000
  pulse min input.txt --no-fallback --output report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMin,
}

func init() {
	rootCmd.AddCommand(minCmd)

	minCmd.Flags().StringVarP(&minTarget, "target", "t", "",
		"module that must receive a low pulse (default from config, rx)")
	minCmd.Flags().Int64Var(&minMaxPresses, "max-presses", 0,
		"press limit per watcher or direct run (default from config)")
	minCmd.Flags().BoolVar(&minNoVerify, "no-verify", false,
		"accept the first firing of each watcher without checking the second")
	minCmd.Flags().BoolVar(&minNoFallback, "no-fallback", false,
		"fail instead of simulating directly when the network has no watchable shape")
	minCmd.Flags().BoolVar(&minSequential, "sequential", false,
		"measure watchers one after another")
	minCmd.Flags().StringVarP(&minOutput, "output", "o", "",
		"output JSON report path")
}

func runMin(cmd *cobra.Command, args []string) (err error) {
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
		if ferr := s.finish(extrapolate.QueryMinPresses, status); ferr != nil && err == nil {
			err = ferr
		}
	}()

	target := settings.Target
	if minTarget != "" {
		target = minTarget
	}

	cfg := settings.Extrapolate()
	if minMaxPresses > 0 {
		cfg.MaxPresses = minMaxPresses
	}
	if minNoVerify {
		cfg.VerifyPeriods = false
	}
	if minNoFallback {
		cfg.AllowFallback = false
	}
	if minSequential {
		cfg.Parallel = false
	}

	progress, stop := startProgress()
	r, err := s.runner(cfg, progress)
	if err != nil {
		stop()
		return fmt.Errorf("invalid configuration: %w", err)
	}

	report := extrapolate.NewReport(extrapolate.QueryMinPresses, r.Config())
	report.Input = s.path
	report.Digest = s.digest

	c := r.Config()
	key := cache.Key(s.digest, extrapolate.QueryMinPresses, target,
		strconv.FormatInt(c.MaxPresses, 10),
		strconv.FormatBool(c.VerifyPeriods),
		strconv.FormatBool(c.AllowFallback))

	var res extrapolate.MinResult
	if s.lookup(key, &res) {
		stop()
		status = "cached"
		report.Cached = true
	} else {
		ctx, cancel := commandContext(cmd.Context())
		defer cancel()

		out, err := r.MinPresses(ctx, target)
		stop()
		if err != nil {
			return fmt.Errorf("min presses failed: %w", err)
		}
		res = *out
		s.store(key, res)
	}

	report.Min = &res
	report.Elapsed = time.Since(startTime)
	if err := printMin(report); err != nil {
		return err
	}

	if minOutput != "" {
		return writeReport(report, minOutput)
	}
	return nil
}

func printMin(report *extrapolate.Report) error {
	res := report.Min
	if verbose {
		fmt.Println("╔════════════════════════════════════════════════════════════════╗")
		fmt.Println("║ Minimum Presses                                                ║")
		fmt.Println("╚════════════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Printf("Run ID:         %s\n", report.RunID)
	}

	fmt.Printf("Target:         %s\n", res.Target)
	switch {
	case res.Fallback:
		fmt.Println("Method:         direct simulation")
	case res.Plan != nil:
		fmt.Printf("Method:         LCM of watcher periods (%s)\n", res.Plan)
		for _, w := range res.Watchers {
			if w.Second > 0 {
				fmt.Printf("  • %-12s period %d (again at %d)\n", w.Name, w.Period, w.Second)
			} else {
				fmt.Printf("  • %-12s period %d\n", w.Name, w.Period)
			}
		}
		if res.Confirmed {
			fmt.Println("Check:          confirmed by direct simulation")
		}
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

// Package extrapolate answers questions about pulse networks that would take
// too long to simulate press by press.
//
// # Overview
//
// Two queries are provided on a Runner:
//
//  1. Aggregate sums low and high pulses over a fixed number of presses and
//     reports their product. With cycle detection the full module state is
//     fingerprinted after every press; the first repeated state ends the
//     simulation and the rest of the horizon is computed from prefix sums.
//     Totals too large for an int64 are an error, not a wrapped number.
//  2. MinPresses finds the first press after which a target module receives a
//     low pulse. Networks built from independent counters behind a single
//     conjunction are solved by measuring each counter's period and taking
//     the LCM of the periods.
//
// # Usage
//
//	net, err := netlist.Load("input.txt")
//
//	cfg := extrapolate.DefaultConfig()
//	cfg.MaxPresses = 1 << 20
//
//	progressCh := make(chan extrapolate.Progress)
//	go func() {
//		for p := range progressCh {
//			fmt.Printf("[%s] %s %d/%d\n", p.Phase, p.Watcher, p.Press, p.Total)
//		}
//	}()
//
//	r, err := extrapolate.NewRunner(net, cfg, extrapolate.WithProgress(progressCh))
//	res, err := r.MinPresses(ctx, "rx")
//	close(progressCh)
//
// # Watch plans
//
// MinPresses relies on the shape found by Plan:
//
//	counter A ... -> &ia --\
//	                        &hub -> rx
//	counter B ... -> &ib --/
//
// hub sends low only when it last received high from every input, so rx is
// reached at the first press where every watcher emits high in the same
// press. If each watcher emits high exactly on multiples of its own period,
// that press is the LCM of the periods. Plan rejects networks where the
// watchers share modules, and VerifyPeriods rejects watchers whose second
// firing is not at twice the first. An answer within MaxPresses is replayed
// on a fresh simulator and must match the first low pulse to the target.
//
// When the shape is missing and AllowFallback is set, MinPresses simulates
// directly up to MaxPresses and marks the result as a fallback.
//
// # Errors
//
// ErrUnknownTarget, ErrPrecondition and ErrHorizonExceeded are returned
// wrapped with detail; test with errors.Is. A cancelled context stops every
// run between presses.
package extrapolate

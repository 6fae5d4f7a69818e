package bb84

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// A HarnessOpts packages together the arguments necessary to run a batch of
// independent trial sessions.
type HarnessOpts struct {
	// Trials is the number of sessions to run. Must be positive;
	// DefaultTrials is the conventional choice.
	Trials int

	// Qubits is the number of qubits sent per session. Must be positive.
	Qubits int

	// Rand seeds every trial. Each trial draws from its own stream seeded from
	// Rand, so results depend only on Rand and not on Parallelism. Must be
	// non-nil.
	Rand *rand.Rand

	// Parallelism is the number of goroutines running trials. Values below 2
	// run trials sequentially.
	Parallelism int

	// Logger receives progress logs. Defaults to a no-op logger.
	Logger *zap.Logger
}

// A TrialResult records the ground truth and verdict of a single trial.
type TrialResult struct {
	Trial              int
	Eavesdropping      bool
	Detected           bool
	EavesdroppingRatio float64
	QBER               float64
}

// A Table is the contingency table of eavesdropping presence against
// detection.
type Table struct {
	EnabledDetected    int
	EnabledUndetected  int
	DisabledDetected   int
	DisabledUndetected int
}

// Add tallies a single trial.
func (t *Table) Add(res TrialResult) {
	switch {
	case res.Eavesdropping && res.Detected:
		t.EnabledDetected++
	case res.Eavesdropping:
		t.EnabledUndetected++
	case res.Detected:
		t.DisabledDetected++
	default:
		t.DisabledUndetected++
	}
}

// Merge adds the counts of other into t.
func (t *Table) Merge(other Table) {
	t.EnabledDetected += other.EnabledDetected
	t.EnabledUndetected += other.EnabledUndetected
	t.DisabledDetected += other.DisabledDetected
	t.DisabledUndetected += other.DisabledUndetected
}

// Total returns the number of trials tallied in t.
func (t Table) Total() int {
	return t.EnabledDetected + t.EnabledUndetected + t.DisabledDetected + t.DisabledUndetected
}

// Results packages the contingency table of a harness run together with the
// per-trial results it was built from, in trial order.
type Results struct {
	Table  Table
	Trials []TrialResult
}

// RunTrials runs opts.Trials independent sessions, each with eavesdropping
// decided by a fair coin, and tabulates how often eavesdropping was detected.
// A failing trial aborts the whole run.
func RunTrials(opts HarnessOpts) (Table, error) {
	res, err := RunTrialsDetailed(opts)
	if err != nil {
		return Table{}, err
	}
	return res.Table, nil
}

// RunTrialsDetailed is like RunTrials, but also returns every trial's result.
func RunTrialsDetailed(opts HarnessOpts) (Results, error) {
	if opts.Trials <= 0 {
		return Results{}, fmt.Errorf("%w: trial count must be positive, got %d", ErrInvalidConfiguration, opts.Trials)
	}
	if opts.Qubits <= 0 {
		return Results{}, fmt.Errorf("%w: qubit count must be positive, got %d", ErrInvalidConfiguration, opts.Qubits)
	}
	if opts.Rand == nil {
		return Results{}, fmt.Errorf("%w: must provide Rand", ErrInvalidConfiguration)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := opts.Parallelism
	if workers < 1 {
		workers = 1
	}
	if workers > opts.Trials {
		workers = opts.Trials
	}

	seeds := make([]int64, opts.Trials)
	for i := range seeds {
		seeds[i] = opts.Rand.Int63()
	}
	logger.Info("starting trials",
		zap.Int("trials", opts.Trials),
		zap.Int("qubits", opts.Qubits),
		zap.Int("parallelism", workers))

	var (
		wg      sync.WaitGroup
		results = make([]TrialResult, opts.Trials)
		tables  = make([]Table, workers)
		errs    = make([]error, opts.Trials)
	)
	// firstFailure is the lowest trial index known to have failed. Every trial
	// below it runs, so the error returned does not depend on Parallelism.
	var firstFailure atomic.Int64
	firstFailure.Store(int64(opts.Trials))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < opts.Trials && int64(i) < firstFailure.Load(); i += workers {
				res, err := runTrial(i, seeds[i], opts.Qubits)
				if err != nil {
					errs[i] = err
					lowerTo(&firstFailure, int64(i))
					return
				}
				logger.Debug("trial finished",
					zap.Int("trial", i),
					zap.Bool("eavesdropping", res.Eavesdropping),
					zap.Bool("detected", res.Detected),
					zap.Float64("eavesdropping_ratio", res.EavesdroppingRatio))
				results[i] = res
				tables[w].Add(res)
			}
		}(w)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			logger.Error("trial failed", zap.Int("trial", i), zap.Error(err))
			return Results{}, fmt.Errorf("trial %d: %w", i, err)
		}
	}
	var table Table
	for _, t := range tables {
		table.Merge(t)
	}
	logger.Info("trials finished",
		zap.Int("enabled_detected", table.EnabledDetected),
		zap.Int("enabled_undetected", table.EnabledUndetected),
		zap.Int("disabled_detected", table.DisabledDetected),
		zap.Int("disabled_undetected", table.DisabledUndetected))
	return Results{Table: table, Trials: results}, nil
}

// lowerTo atomically sets v to min(v, x).
func lowerTo(v *atomic.Int64, x int64) {
	for {
		cur := v.Load()
		if x >= cur || v.CompareAndSwap(cur, x) {
			return
		}
	}
}

func runTrial(i int, seed int64, qubits int) (TrialResult, error) {
	r := rand.New(rand.NewSource(seed))
	eavesdrop := r.Intn(2) == 1
	rec, err := Session(SessionOpts{
		Qubits:    qubits,
		Eavesdrop: eavesdrop,
		Rand:      r,
	})
	if err != nil {
		return TrialResult{}, err
	}
	return TrialResult{
		Trial:              i,
		Eavesdropping:      eavesdrop,
		Detected:           rec.Detected(),
		EavesdroppingRatio: rec.EavesdroppingRatio,
		QBER:               rec.QBER,
	}, nil
}

// bench runs a batch of BB84 trials for each entry in the cartesian product of
// a collection of different parameters, e.g. qubits per session and trials per
// batch, and outputs a CSV of detection statistics for each combination.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"text/template"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alan-christopher/bb84sim/bb84"
	"github.com/alan-christopher/bb84sim/bb84/logging"
)

var (
	qubits   = flag.IntSlice("qubits", []int{bb84.DefaultQubits}, "The number of qubits sent per session.")
	trials   = flag.IntSlice("trials", []int{bb84.DefaultTrials}, "The number of sessions per batch.")
	parallel = flag.IntSlice("parallel", []int{1}, "The number of goroutines running each batch.")
	seed     = flag.Int64("seed", 1234, "The master seed. Every combination starts from it.")
	config   = flag.String("config", "", "An optional YAML sweep file supplying defaults for the flags above.")
	verbose  = flag.Bool("verbose", false, "Log every trial.")
)

var (
	inputs  = []string{"qubits", "trials", "parallel"}
	columns = []string{"Qubits", "Trials", "Parallel",
		"EnabledDetected", "EnabledUndetected", "DisabledDetected", "DisabledUndetected",
		"DetectionRate", "DetectionLo", "DetectionHi", "FalseAlarmRate", "MeanRatio",
		"MeanQBER", "Succeeded"}
)

// An Experiment packages together the result of benchmarking a single
// parameterization for easy formatting.
type Experiment struct {
	// Fields corresponding to experiment parameters
	Qubits   int
	Trials   int
	Parallel int

	// Fields corresponding to experiment results
	EnabledDetected    int
	EnabledUndetected  int
	DisabledDetected   int
	DisabledUndetected int
	DetectionRate      float64
	DetectionLo        float64
	DetectionHi        float64
	FalseAlarmRate     float64
	MeanRatio          float64
	MeanQBER           float64
	Succeeded          bool
}

func main() {
	flag.Parse()
	logger := logging.New(os.Stderr, *verbose)
	defer logger.Sync()

	if *config != "" {
		s, err := loadSweep(*config)
		if err != nil {
			logger.Fatal("loading sweep", zap.Error(err))
		}
		if err := s.merge(flag.CommandLine); err != nil {
			logger.Fatal("loading sweep", zap.Error(err))
		}
	}
	if err := sweepAll(os.Stdout, flag.CommandLine, *seed, logger); err != nil {
		logger.Fatal("sweep failed", zap.Error(err))
	}
}

// sweepAll writes a CSV header followed by one line per combination of the
// inputs set in fs.
func sweepAll(w io.Writer, fs *flag.FlagSet, seed int64, logger *zap.Logger) error {
	if _, err := fmt.Fprintln(w, header()); err != nil {
		return err
	}
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	var args [][]int
	for _, inp := range inputs {
		vals, err := fs.GetIntSlice(inp)
		if err != nil {
			return fmt.Errorf("looking up %s: %w", inp, err)
		}
		if len(vals) == 0 {
			return fmt.Errorf("%w: no values for %s", bb84.ErrInvalidConfiguration, inp)
		}
		args = append(args, vals)
	}
	var tmplErr error
	applyCartesian(func(args []int) {
		if tmplErr != nil {
			return
		}
		exp := &Experiment{
			Qubits:   args[inpIndex("qubits")],
			Trials:   args[inpIndex("trials")],
			Parallel: args[inpIndex("parallel")],
		}
		if err := bench(exp, seed, logger); err != nil {
			logger.Warn("benching failed", zap.Any("experiment", exp), zap.Error(err))
		}
		tmplErr = tmpl.Execute(w, exp)
	}, args)
	return tmplErr
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

func bench(exp *Experiment, seed int64, logger *zap.Logger) error {
	res, err := bb84.RunTrialsDetailed(bb84.HarnessOpts{
		Trials:      exp.Trials,
		Qubits:      exp.Qubits,
		Rand:        rand.New(rand.NewSource(seed)),
		Parallelism: exp.Parallel,
		Logger:      logger,
	})
	exp.Succeeded = err == nil
	if err != nil {
		return err
	}
	s := res.Summary()
	exp.EnabledDetected = res.Table.EnabledDetected
	exp.EnabledUndetected = res.Table.EnabledUndetected
	exp.DisabledDetected = res.Table.DisabledDetected
	exp.DisabledUndetected = res.Table.DisabledUndetected
	exp.DetectionRate = s.DetectionRate.Estimate
	exp.DetectionLo = s.DetectionRate.Lo
	exp.DetectionHi = s.DetectionRate.Hi
	exp.FalseAlarmRate = s.FalseAlarmRate.Estimate
	exp.MeanRatio = s.MeanRatio
	exp.MeanQBER = s.MeanQBER
	return nil
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func applyCartesian(f func([]int), args [][]int) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]int, len(args))
		r := make([][]int, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]int, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}

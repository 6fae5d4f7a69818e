// bb84 runs a single BB84 session, prints its transcript, then runs a batch of
// independent trials with randomly enabled eavesdropping and prints how often
// the eavesdropper was caught.
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alan-christopher/bb84sim/bb84"
	"github.com/alan-christopher/bb84sim/bb84/logging"
	"github.com/alan-christopher/bb84sim/bb84/report"
)

var (
	qubits    = flag.Int("qubits", bb84.DefaultQubits, "The number of qubits Alice sends per session.")
	eavesdrop = flag.Bool("eavesdrop", true, "Whether Eve intercepts the demonstration session.")
	trials    = flag.Int("trials", bb84.DefaultTrials, "The number of trial sessions to tabulate.")
	seed      = flag.Int64("seed", 0, "The master random seed. 0 picks one from the clock.")
	parallel  = flag.Int("parallel", 1, "The number of goroutines running trials.")
	amplify   = flag.Int("amplify", 0, "If positive, hash the residual key down to at most this many bits.")
	format    = flag.String("format", "text", "Output format, one of text or json.")
	verbose   = flag.Bool("verbose", false, "Log every trial.")
)

func main() {
	flag.Parse()
	logger := logging.New(os.Stderr, *verbose)
	defer logger.Sync()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	logger.Info("seeded", zap.Int64("seed", *seed))
	if err := run(os.Stdout, rand.New(rand.NewSource(*seed)), logger); err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func run(w io.Writer, r *rand.Rand, logger *zap.Logger) error {
	if *format != "text" && *format != "json" {
		return fmt.Errorf("%w: unknown format %q", bb84.ErrInvalidConfiguration, *format)
	}
	rec, err := bb84.Session(bb84.SessionOpts{
		Qubits:        *qubits,
		Eavesdrop:     *eavesdrop,
		Rand:          r,
		AmplifiedBits: *amplify,
	})
	if err != nil {
		return fmt.Errorf("running session: %w", err)
	}
	res, err := bb84.RunTrialsDetailed(bb84.HarnessOpts{
		Trials:      *trials,
		Qubits:      *qubits,
		Rand:        r,
		Parallelism: *parallel,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("running trials: %w", err)
	}

	if *format == "json" {
		out := &structpb.Struct{Fields: map[string]*structpb.Value{
			"session": structpb.NewStructValue(report.RecordProto(rec)),
			"trials":  structpb.NewStructValue(report.TableProto(res.Table, res.Summary())),
		}}
		b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshalling results: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	if err := report.WriteTranscript(w, rec); err != nil {
		return err
	}
	if err := report.WriteTable(w, res.Table); err != nil {
		return err
	}
	return report.WriteSummary(w, res.Summary())
}

package report

import (
	"bytes"
	"math"
	"math/rand"
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/alan-christopher/bb84sim/bb84"
)

func session(t *testing.T, eavesdrop bool, seed int64) *bb84.Record {
	rec, err := bb84.Session(bb84.SessionOpts{
		Qubits:    bb84.DefaultQubits,
		Eavesdrop: eavesdrop,
		Rand:      rand.New(rand.NewSource(seed)),
	})
	if err != nil {
		t.Fatalf("bugged test setup: %v", err)
	}
	return rec
}

func TestWriteTranscript(t *testing.T) {
	tcs := []struct {
		name      string
		eavesdrop bool
		want      []string
		dontWant  []string
	}{{
		name:      "clean",
		eavesdrop: false,
		want:      []string{"QUANTUM TRANSMISSION", "PUBLIC DISCUSSION", "Eavesdropping ratio:                0.00%", "Channel is safe!"},
		dontWant:  []string{"Eve's bases", "Eavesdropping detected!"},
	}, {
		name:      "tapped",
		eavesdrop: true,
		want:      []string{"Eve's bases:", "OUTCOME"},
	}}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			rec := session(t, tc.eavesdrop, 7)
			var buf bytes.Buffer
			if err := WriteTranscript(&buf, rec); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out := buf.String()
			for _, w := range tc.want {
				if !strings.Contains(out, w) {
					t.Errorf("transcript missing %q:\n%s", w, out)
				}
			}
			for _, w := range tc.dontWant {
				if strings.Contains(out, w) {
					t.Errorf("transcript unexpectedly contains %q:\n%s", w, out)
				}
			}
			wantBits := "Alice's random bits:                " + bits(rec.AliceBits)
			if !strings.Contains(out, wantBits) {
				t.Errorf("transcript missing %q:\n%s", wantBits, out)
			}
		})
	}
}

func TestTranscriptSymbols(t *testing.T) {
	rec := session(t, true, 3)
	var buf bytes.Buffer
	if err := WriteTranscript(&buf, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var confirmed string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "Confirmed by Alice:") {
			confirmed = strings.TrimSpace(strings.TrimPrefix(line, "Confirmed by Alice:"))
		}
	}
	if got, want := strings.Count(confirmed, "T")+strings.Count(confirmed, "F"), rec.Checks; got != want {
		t.Errorf("confirmation line %q has %d verdicts, want %d", confirmed, got, want)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	table := bb84.Table{EnabledDetected: 45, EnabledUndetected: 5, DisabledDetected: 0, DisabledUndetected: 50}
	if err := WriteTable(&buf, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| Eavesdropping detected    |                 45 |                   0 |"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("table missing row %q:\n%s", want, buf.String())
	}

	buf.Reset()
	if err := WriteSummary(&buf, table.Summary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Detection rate:   0.900") {
		t.Errorf("summary missing detection rate:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "Mean") {
		t.Errorf("summary reports means without per-trial results:\n%s", buf.String())
	}
}

func TestRecordProto(t *testing.T) {
	rec := session(t, true, 11)
	s := RecordProto(rec)
	if got := s.Fields["eavesdropping_ratio"].GetNumberValue(); got != rec.EavesdroppingRatio {
		t.Errorf("eavesdropping_ratio == %f, want %f", got, rec.EavesdroppingRatio)
	}
	if got := len(s.Fields["outcome"].GetListValue().GetValues()); got != rec.Qubits {
		t.Errorf("outcome has %d entries, want %d", got, rec.Qubits)
	}
	if _, ok := s.Fields["eve_bits"]; !ok {
		t.Errorf("eavesdropped record has no eve_bits")
	}
	if _, err := protojson.Marshal(s); err != nil {
		t.Errorf("protojson.Marshal: %v", err)
	}
}

func TestTableProtoOmitsNaN(t *testing.T) {
	table := bb84.Table{EnabledDetected: 1, DisabledUndetected: 1}
	s := TableProto(table, table.Summary())
	if _, ok := s.Fields["mean_ratio"]; ok {
		t.Errorf("mean_ratio present although undefined")
	}
	if _, err := protojson.Marshal(s); err != nil {
		t.Errorf("protojson.Marshal: %v", err)
	}

	sum := table.Summary()
	sum.MeanRatio, sum.MeanQBER = 2.5, 0.1
	s = TableProto(table, sum)
	if got := s.Fields["mean_ratio"].GetNumberValue(); math.Abs(got-2.5) > 1e-12 {
		t.Errorf("mean_ratio == %f, want 2.5", got)
	}
}

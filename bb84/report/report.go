// Package report renders session records and harness results for people and
// for machines. It holds no protocol logic of its own.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/template"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alan-christopher/bb84sim/bb84"
	"github.com/alan-christopher/bb84sim/bb84/bitmap"
)

const transcriptTmpl = `
QUANTUM TRANSMISSION
Alice's random bits:                {{.AliceBits}}
Random sending bases:               {{.AliceBases}}
Random receiving bases:             {{.BobBases}}
Bits as received by Bob:            {{.BobBits}}

PUBLIC DISCUSSION
Bob reports used bases:             {{.BobBases}}
Correct bases according to Alice:   {{.Markers}}
Presumably shared information:      {{.CorrectBits}}
Randomly stored half:               {{.Disclosed}}
{{- if .Eavesdropping}}
Eve's bases:                        {{.EveBases}}
{{- end}}
Confirmed by Alice:                 {{.Confirmations}}

OUTCOME
Remaining shared secret bits:       {{.Outcome}}
Eavesdropping ratio:                {{printf "%.2f" .Ratio}}%

{{if .Detected}}Eavesdropping detected!{{else}}Channel is safe!{{end}}

`

const tableTmpl = `
Test Results:
|                           | Eavesdropping True | Eavesdropping False |
|---------------------------|--------------------|---------------------|
| Eavesdropping detected    | {{printf "%18d" .EnabledDetected}} | {{printf "%19d" .DisabledDetected}} |
| Eavesdropping non-detected| {{printf "%18d" .EnabledUndetected}} | {{printf "%19d" .DisabledUndetected}} |
`

const summaryTmpl = `
Detection rate:   {{interval .DetectionRate}}
False alarm rate: {{interval .FalseAlarmRate}}
Accuracy:         {{interval .Accuracy}}
{{- if not (isNaN .MeanRatio)}}
Mean eavesdropping ratio under attack: {{printf "%.2f" .MeanRatio}}%
Mean QBER under attack:                {{printf "%.3f" .MeanQBER}}
{{- end}}
`

var templates = template.Must(template.New("transcript").Funcs(template.FuncMap{
	"interval": func(i bb84.Interval) string {
		return fmt.Sprintf("%.3f [%.3f, %.3f]", i.Estimate, i.Lo, i.Hi)
	},
	"isNaN": math.IsNaN,
}).Parse(transcriptTmpl))

func init() {
	template.Must(templates.New("table").Parse(tableTmpl))
	template.Must(templates.New("summary").Parse(summaryTmpl))
}

type transcript struct {
	AliceBits, AliceBases string
	EveBases              string
	BobBases, BobBits     string
	Markers               string
	CorrectBits           string
	Disclosed             string
	Confirmations         string
	Outcome               string
	Eavesdropping         bool
	Ratio                 float64
	Detected              bool
}

// WriteTranscript writes a human-readable account of rec to w.
func WriteTranscript(w io.Writer, rec *bb84.Record) error {
	markers := make([]string, len(rec.Markers))
	for i, m := range rec.Markers {
		markers[i] = string(m)
	}
	verdicts := make([]string, len(rec.Confirmations))
	for i, v := range rec.Confirmations {
		verdicts[i] = verdictSymbol(v)
	}
	return templates.ExecuteTemplate(w, "transcript", transcript{
		AliceBits:     bits(rec.AliceBits),
		AliceBases:    bits(rec.AliceBases),
		EveBases:      bits(rec.EveBases),
		BobBases:      bits(rec.BobBases),
		BobBits:       bits(rec.BobBits),
		Markers:       "[" + strings.Join(markers, " ") + "]",
		CorrectBits:   slots(rec.CorrectBits),
		Disclosed:     slots(rec.Disclosed),
		Confirmations: "[" + strings.Join(verdicts, " ") + "]",
		Outcome:       slots(rec.Outcome),
		Eavesdropping: rec.Eavesdropping,
		Ratio:         rec.EavesdroppingRatio,
		Detected:      rec.Detected(),
	})
}

// WriteTable writes the contingency table t to w.
func WriteTable(w io.Writer, t bb84.Table) error {
	return templates.ExecuteTemplate(w, "table", t)
}

// WriteSummary writes the rates and means of s to w.
func WriteSummary(w io.Writer, s bb84.Summary) error {
	return templates.ExecuteTemplate(w, "summary", s)
}

func verdictSymbol(v bb84.Verdict) string {
	switch v {
	case bb84.Confirmed:
		return "T"
	case bb84.Discrepancy:
		return "F"
	default:
		return " "
	}
}

func bits(d bitmap.Dense) string {
	s := make([]string, d.Size())
	for i := range s {
		s[i] = "0"
		if d.Get(i) {
			s[i] = "1"
		}
	}
	return "[" + strings.Join(s, " ") + "]"
}

func slots(ss []bb84.Slot) string {
	s := make([]string, len(ss))
	for i, slot := range ss {
		switch {
		case !slot.Present:
			s[i] = " "
		case slot.Bit:
			s[i] = "1"
		default:
			s[i] = "0"
		}
	}
	return "[" + strings.Join(s, " ") + "]"
}

// RecordProto converts rec into a structpb.Struct. Absent slots become nulls.
func RecordProto(rec *bb84.Record) *structpb.Struct {
	verdicts := make([]*structpb.Value, len(rec.Confirmations))
	for i, v := range rec.Confirmations {
		verdicts[i] = structpb.NewStringValue(v.String())
	}
	fields := map[string]*structpb.Value{
		"qubits":              structpb.NewNumberValue(float64(rec.Qubits)),
		"eavesdropping":       structpb.NewBoolValue(rec.Eavesdropping),
		"alice_bits":          structpb.NewListValue(rec.AliceBits.ToProto()),
		"alice_bases":         structpb.NewListValue(rec.AliceBases.ToProto()),
		"bob_bases":           structpb.NewListValue(rec.BobBases.ToProto()),
		"bob_bits":            structpb.NewListValue(rec.BobBits.ToProto()),
		"matches":             structpb.NewListValue(rec.Matches.ToProto()),
		"alice_key":           structpb.NewListValue(rec.AliceKey.ToProto()),
		"bob_key":             structpb.NewListValue(rec.BobKey.ToProto()),
		"correct_bits":        slotsProto(rec.CorrectBits),
		"disclosed":           slotsProto(rec.Disclosed),
		"confirmations":       structpb.NewListValue(&structpb.ListValue{Values: verdicts}),
		"outcome":             slotsProto(rec.Outcome),
		"eavesdropping_ratio": structpb.NewNumberValue(rec.EavesdroppingRatio),
		"qber":                structpb.NewNumberValue(rec.QBER),
		"checks":              structpb.NewNumberValue(float64(rec.Checks)),
		"detected":            structpb.NewBoolValue(rec.Detected()),
	}
	if rec.Eavesdropping {
		fields["eve_bases"] = structpb.NewListValue(rec.EveBases.ToProto())
		fields["eve_bits"] = structpb.NewListValue(rec.EveBits.ToProto())
	}
	if rec.AliceFinal.Size() > 0 {
		fields["alice_final"] = structpb.NewListValue(rec.AliceFinal.ToProto())
		fields["bob_final"] = structpb.NewListValue(rec.BobFinal.ToProto())
	}
	return &structpb.Struct{Fields: fields}
}

// TableProto converts t, along with its summary s, into a structpb.Struct.
func TableProto(t bb84.Table, s bb84.Summary) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"enabled_detected":    structpb.NewNumberValue(float64(t.EnabledDetected)),
		"enabled_undetected":  structpb.NewNumberValue(float64(t.EnabledUndetected)),
		"disabled_detected":   structpb.NewNumberValue(float64(t.DisabledDetected)),
		"disabled_undetected": structpb.NewNumberValue(float64(t.DisabledUndetected)),
		"detection_rate":      intervalProto(s.DetectionRate),
		"false_alarm_rate":    intervalProto(s.FalseAlarmRate),
		"accuracy":            intervalProto(s.Accuracy),
	}
	// NaN has no JSON representation.
	if !math.IsNaN(s.MeanRatio) {
		fields["mean_ratio"] = structpb.NewNumberValue(s.MeanRatio)
		fields["mean_qber"] = structpb.NewNumberValue(s.MeanQBER)
	}
	return &structpb.Struct{Fields: fields}
}

func intervalProto(i bb84.Interval) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"estimate": structpb.NewNumberValue(i.Estimate),
		"lo":       structpb.NewNumberValue(i.Lo),
		"hi":       structpb.NewNumberValue(i.Hi),
	}})
}

func slotsProto(ss []bb84.Slot) *structpb.Value {
	vals := make([]*structpb.Value, len(ss))
	for i, s := range ss {
		switch {
		case !s.Present:
			vals[i] = structpb.NewNullValue()
		case s.Bit:
			vals[i] = structpb.NewNumberValue(1)
		default:
			vals[i] = structpb.NewNumberValue(0)
		}
	}
	return structpb.NewListValue(&structpb.ListValue{Values: vals})
}

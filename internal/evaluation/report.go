package evaluation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render writes the report to w in the given format. The report is encoded
// in full before anything is written.
func (r *Report) Render(w io.Writer, format string) error {
	var buf bytes.Buffer

	switch format {
	case FormatText, "":
		r.writeText(&buf)
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding json report: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml report: %w", err)
		}
	default:
		return fmt.Errorf("unknown report format %q", format)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// writeText emits one "label\tvalue" line per metric.
func (r *Report) writeText(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "MAP\t%.4f\n", r.MAP)
	fmt.Fprintf(buf, "accu.\t%.4f\n", r.Accuracy)
	for _, p := range r.Precision {
		fmt.Fprintf(buf, "P_%-4d\t%.4f\n", p.Cutoff, p.Value)
	}
	fmt.Fprintf(buf, "all\t%.4f\n", r.Coverage)
}

// Metrics flattens the report into label -> value pairs keyed like the text
// output labels, without padding.
func (r *Report) Metrics() map[string]float64 {
	m := map[string]float64{
		"MAP":   r.MAP,
		"accu.": r.Accuracy,
		"all":   r.Coverage,
	}
	for _, p := range r.Precision {
		m[fmt.Sprintf("P_%d", p.Cutoff)] = p.Value
	}
	return m
}

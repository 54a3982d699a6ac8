package report

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/alt-project/normscan/internal/anomaly"
)

// Format selects how a report is rendered
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatTable, FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid format %q: must be text, table, json, or yaml", s)
	}
}

// Structured reports whether the format is rendered once at the end of a run
func (f Format) Structured() bool {
	return f == FormatJSON || f == FormatYAML
}

// TimeLayout is used for group bounds in text and table output
const TimeLayout = time.DateTime

// FormatLine renders one anomaly the way the text format prints it
func FormatLine(a anomaly.Anomaly) string {
	return fmt.Sprintf("Anomaly from %s - %s, k2 = %v, p_value = %v",
		a.Group.Start().Format(TimeLayout),
		a.Group.End().Format(TimeLayout),
		a.Result.Statistic,
		a.Result.PValue,
	)
}

// Float is a float64 that survives JSON encoding when it is not finite.
// +Inf, -Inf and NaN are written as strings.
type Float float64

// MarshalJSON implements json.Marshaler
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// String formats the value for tables
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', 6, 64)
}

package core

// LineKind classifies how a line of input was handled.
type LineKind string

const (
	LineRecord      LineKind = "record"      // JSON that passed the filters and was printed
	LinePassthrough LineKind = "passthrough" // not JSON, printed verbatim
)

// LogLine is one printed unit of output.
type LogLine struct {
	Seq  uint64   `json:"seq"`
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}

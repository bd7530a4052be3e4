package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/modoterra/jstern/pkg/query"
)

// DefaultMaxLineBytes bounds a single input line.
const DefaultMaxLineBytes = 16 << 20

// maxConsecutiveErrors stops a reader that fails on every call.
const maxConsecutiveErrors = 100

var errLineTooLong = errors.New("line too long")

// Sink receives printable output.
type Sink interface {
	// Record receives a rendered record that passed the filters.
	Record(s string) error
	// Raw receives a line that was not JSON.
	Raw(line string) error
}

// Renderer turns a projected value into display text; false suppresses it.
type Renderer interface {
	Render(v any) (string, bool)
}

// Outcome is the final state of one input line.
type Outcome int

const (
	OutcomePrinted Outcome = iota
	OutcomeSuppressed
	OutcomeFiltered
	OutcomePassthrough
)

func (o Outcome) String() string {
	switch o {
	case OutcomePrinted:
		return "printed"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeFiltered:
		return "filtered"
	case OutcomePassthrough:
		return "passthrough"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Config is the per-record processing configuration.
type Config struct {
	Predicates   []query.Predicate
	Projection   query.Projection
	MaxLineBytes int
}

// Stats counts what happened to the lines of one run.
type Stats struct {
	Lines       uint64
	Parsed      uint64
	Passthrough uint64
	Filtered    uint64
	Suppressed  uint64
	Printed     uint64
	ReadErrors  uint64
}

// Pipeline reads newline-delimited input and prints what matches.
type Pipeline struct {
	cfg      Config
	renderer Renderer
	sink     Sink
	logger   *slog.Logger
}

// New creates a pipeline. Diagnostics such as read errors go to logger.
func New(cfg Config, renderer Renderer, sink Sink, logger *slog.Logger) *Pipeline {
	if cfg.MaxLineBytes <= 0 {
		cfg.MaxLineBytes = DefaultMaxLineBytes
	}
	return &Pipeline{
		cfg:      cfg,
		renderer: renderer,
		sink:     sink,
		logger:   logger,
	}
}

// Run processes r until end of stream. A failed read is logged and the next
// line is tried; end of stream or a closed stream ends the run.
func (p *Pipeline) Run(r io.Reader) Stats {
	var stats Stats
	br := bufio.NewReaderSize(r, 64*1024)
	consecutive := 0
	// resync is set when a read failed part way through a line; the rest of
	// that line is dropped rather than shown as a line of its own.
	resync := false

	for {
		line, err := readLine(br, p.cfg.MaxLineBytes)
		if err != nil {
			if isEndOfStream(err) {
				if line != "" && !resync {
					p.count(&stats, p.Handle(line))
				}
				break
			}
			stats.ReadErrors++
			p.logger.Warn("read line", "err", err)
			if errors.Is(err, errLineTooLong) {
				continue
			}
			if line != "" {
				resync = true
			}
			consecutive++
			if consecutive >= maxConsecutiveErrors {
				p.logger.Error("giving up on input", "errors", consecutive)
				break
			}
			continue
		}
		consecutive = 0
		if resync {
			resync = false
			p.logger.Debug("dropped remainder of partially read line", "bytes", len(line))
			continue
		}
		p.count(&stats, p.Handle(line))
	}

	p.logger.Debug("pipeline finished",
		"lines", stats.Lines,
		"printed", stats.Printed,
		"passthrough", stats.Passthrough,
		"filtered", stats.Filtered,
		"suppressed", stats.Suppressed,
		"read_errors", stats.ReadErrors,
	)
	return stats
}

// Handle runs one line through parse, filter, projection and rendering.
func (p *Pipeline) Handle(line string) Outcome {
	record, ok := parseRecord(line)
	if !ok {
		p.emit(p.sink.Raw, line)
		return OutcomePassthrough
	}
	if !query.Passes(record, p.cfg.Predicates) {
		return OutcomeFiltered
	}
	out, ok := p.renderer.Render(p.cfg.Projection.Project(record))
	if !ok {
		return OutcomeSuppressed
	}
	p.emit(p.sink.Record, out)
	return OutcomePrinted
}

func (p *Pipeline) emit(fn func(string) error, s string) {
	if err := fn(s); err != nil {
		p.logger.Warn("write output", "err", err)
	}
}

func (p *Pipeline) count(stats *Stats, o Outcome) {
	stats.Lines++
	switch o {
	case OutcomePrinted:
		stats.Parsed++
		stats.Printed++
	case OutcomeSuppressed:
		stats.Parsed++
		stats.Suppressed++
	case OutcomeFiltered:
		stats.Parsed++
		stats.Filtered++
	case OutcomePassthrough:
		stats.Passthrough++
	}
}

// parseRecord decodes line as exactly one JSON value. Numbers are kept as
// json.Number so they compare and print in their original form.
func parseRecord(line string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return v, true
}

// readLine returns the next line without its terminator. Lines longer than
// max are consumed and reported as errLineTooLong.
func readLine(br *bufio.Reader, max int) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > max+2 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if tooLong {
			if err != nil && isEndOfStream(err) {
				return "", err
			}
			return "", fmt.Errorf("%w (limit %d bytes)", errLineTooLong, max)
		}
		line := strings.TrimSuffix(strings.TrimSuffix(string(buf), "\n"), "\r")
		return line, err
	}
}

func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}

package model

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/modoterra/jstern/pkg/core"
	"github.com/modoterra/jstern/pkg/pipeline"
)

// Sender delivers messages to a running program; *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Sink forwards pipeline output to the viewer.
type Sink struct {
	to  Sender
	seq atomic.Uint64
}

// NewSink creates a sink sending to s.
func NewSink(s Sender) *Sink {
	return &Sink{to: s}
}

// Record implements pipeline.Sink.
func (k *Sink) Record(s string) error {
	k.send(core.LineRecord, s)
	return nil
}

// Raw implements pipeline.Sink.
func (k *Sink) Raw(line string) error {
	k.send(core.LinePassthrough, line)
	return nil
}

// End reports the end of the stream.
func (k *Sink) End(stats pipeline.Stats) {
	k.to.Send(StreamEndedMsg{Stats: stats})
}

func (k *Sink) send(kind core.LineKind, text string) {
	k.to.Send(LogLineMsg{Seq: k.seq.Add(1), Kind: kind, Text: text})
}

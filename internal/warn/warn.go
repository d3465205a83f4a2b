// Package warn carries recoverable conditions (missing merge paths, no-op
// perturbations, validator rejections) to the console. The same messages
// are recorded on each artifact's notes by the caller.
package warn

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Prefix starts every console warning line.
const Prefix = "WARNING: "

// Kind classifies a recoverable condition.
type Kind string

const (
	// MissingPath: a step's path is absent in the perturbation source.
	MissingPath Kind = "missing_path"
	// IdenticalMerge: the perturbation contributes no change.
	IdenticalMerge Kind = "identical_merge"
	// ValidationFailure: the config validator rejected the document.
	ValidationFailure Kind = "validation_failure"
)

// Warning is a recoverable condition attached to one generated artifact.
type Warning struct {
	Kind    Kind
	Message string
}

// Sink receives warning messages. Implementations must be safe for
// concurrent use.
type Sink interface {
	Warn(msg string)
}

// Console prints warnings in yellow, one per line.
type Console struct {
	mu sync.Mutex
	w  io.Writer
	c  *color.Color
}

// NewConsole creates a console sink writing to w. Color follows
// color.NoColor, which fatih/color derives from stdout and NO_COLOR.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, c: color.New(color.FgHiYellow)}
}

// Warn prints msg with the WARNING prefix.
func (s *Console) Warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, s.c.Sprint(Prefix+msg))
}

// Collector records warnings in arrival order.
type Collector struct {
	mu   sync.Mutex
	msgs []string
}

// Warn records msg.
func (c *Collector) Warn(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

// Messages returns a copy of the recorded warnings.
func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

// Discard drops every warning.
var Discard Sink = discard{}

type discard struct{}

func (discard) Warn(string) {}

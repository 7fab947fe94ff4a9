// Package metrics records timings and counts for lexing and parsing.
package metrics

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Well-known metric names.
const (
	Total          = "total"
	Lex            = "lex"
	Parse          = "parse"
	BuildTree      = "build_tree"
	LexTokens      = "lex_tokens"
	ParseSteps     = "parse_steps"
	ParseBacktrack = "parse_backtracks"
	FilesParsed    = "files_parsed"
	FilesFailed    = "files_failed"
	GrammarCompile = "grammar_compile"
	GrammarHit     = "grammar_cache_hit"
	GrammarMiss    = "grammar_cache_miss"
)

// Metrics is a named collection of timers, histograms, and counters. It is
// safe for concurrent use.
type Metrics interface {
	Timer(name string) Timer
	Histogram(name string) Histogram
	Counter(name string) Counter
	All() map[string]any
	Clear()
	json.Marshaler
	fmt.Stringer
}

type metrics struct {
	mu         sync.Mutex
	timers     map[string]*timer
	histograms map[string]*histogram
	counters   map[string]*counter
}

// New returns an empty Metrics.
func New() Metrics {
	m := &metrics{}
	m.Clear()
	return m
}

func (m *metrics) Timer(name string) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.timers[name]
	if t == nil {
		t = &timer{}
		m.timers[name] = t
	}
	return t
}

func (m *metrics) Histogram(name string) Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.histograms[name]
	if h == nil {
		h = newHistogram()
		m.histograms[name] = h
	}
	return h
}

func (m *metrics) Counter(name string) Counter {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.counters[name]
	if c == nil {
		c = &counter{}
		m.counters[name] = c
	}
	return c
}

// All returns every metric keyed as "timer_<name>_ns", "histogram_<name>",
// or "counter_<name>".
func (m *metrics) All() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(m.timers)+len(m.histograms)+len(m.counters))
	for name, t := range m.timers {
		out["timer_"+name+"_ns"] = t.Value()
	}
	for name, h := range m.histograms {
		out["histogram_"+name] = h.Value()
	}
	for name, c := range m.counters {
		out["counter_"+name] = c.Value()
	}
	return out
}

func (m *metrics) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = make(map[string]*timer)
	m.histograms = make(map[string]*histogram)
	m.counters = make(map[string]*counter)
}

func (m *metrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.All())
}

// String lists the metrics as space-separated key:value pairs, sorted by
// key.
func (m *metrics) String() string {
	all := m.All()
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s:%v", key, all[key])
	}
	return strings.Join(parts, " ")
}

// Timer accumulates elapsed time across Start/Stop pairs.
type Timer interface {
	Start()
	Stop() int64
	Int64() int64
	Value() any
}

type timer struct {
	mu    sync.Mutex
	start time.Time
	total int64
}

func (t *timer) Start() {
	t.mu.Lock()
	t.start = time.Now()
	t.mu.Unlock()
}

// Stop adds the time since Start to the total and returns it in
// nanoseconds. Stop without Start adds nothing.
func (t *timer) Stop() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.start.IsZero() {
		return 0
	}
	delta := time.Since(t.start).Nanoseconds()
	t.total += delta
	t.start = time.Time{}
	return delta
}

func (t *timer) Int64() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

func (t *timer) Value() any {
	return t.Int64()
}

// Histogram summarizes a distribution of values.
type Histogram interface {
	Update(v int64)
	Count() int64
	Value() any
}

type histogram struct {
	h gometrics.Histogram
}

func newHistogram() *histogram {
	return &histogram{h: gometrics.NewHistogram(gometrics.NewExpDecaySample(1028, 0.015))}
}

func (h *histogram) Update(v int64) {
	h.h.Update(v)
}

func (h *histogram) Count() int64 {
	return h.h.Count()
}

var percentiles = []float64{0.5, 0.9, 0.99}

func (h *histogram) Value() any {
	snap := h.h.Snapshot()
	ps := snap.Percentiles(percentiles)
	return map[string]any{
		"count":  snap.Count(),
		"min":    snap.Min(),
		"max":    snap.Max(),
		"mean":   snap.Mean(),
		"median": ps[0],
		"90%":    ps[1],
		"99%":    ps[2],
	}
}

// Counter is a monotonically increasing count.
type Counter interface {
	Incr()
	Add(n uint64)
	Uint64() uint64
	Value() any
}

type counter struct {
	n atomic.Uint64
}

func (c *counter) Incr()          { c.n.Add(1) }
func (c *counter) Add(n uint64)   { c.n.Add(n) }
func (c *counter) Uint64() uint64 { return c.n.Load() }
func (c *counter) Value() any     { return c.n.Load() }

// NoOp returns a Metrics that records nothing.
func NoOp() Metrics {
	return noOp{}
}

type noOp struct{}
type noOpTimer struct{}
type noOpHistogram struct{}
type noOpCounter struct{}

func (noOp) Timer(string) Timer           { return noOpTimer{} }
func (noOp) Histogram(string) Histogram   { return noOpHistogram{} }
func (noOp) Counter(string) Counter       { return noOpCounter{} }
func (noOp) All() map[string]any          { return nil }
func (noOp) Clear()                       {}
func (noOp) MarshalJSON() ([]byte, error) { return []byte("{}"), nil }
func (noOp) String() string               { return "" }
func (noOpTimer) Start()                  {}
func (noOpTimer) Stop() int64             { return 0 }
func (noOpTimer) Int64() int64            { return 0 }
func (noOpTimer) Value() any              { return int64(0) }
func (noOpHistogram) Update(int64)        {}
func (noOpHistogram) Count() int64        { return 0 }
func (noOpHistogram) Value() any          { return nil }
func (noOpCounter) Incr()                 {}
func (noOpCounter) Add(uint64)            {}
func (noOpCounter) Uint64() uint64        { return 0 }
func (noOpCounter) Value() any            { return uint64(0) }

// Package profiler aggregates timings and sample values of repeated operations
// and reports them through zap.
package profiler

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxSamples is the number of samples kept per operation or metric.
const DefaultMaxSamples = 600

// Options configures a Recorder.
type Options struct {
	// ReportInterval is the period of Start's background reports (default: 2s)
	ReportInterval time.Duration
	// MaxSamples bounds the samples kept per name, older ones are dropped (default: 600)
	MaxSamples int
	// Logger receives the reports. Nil disables them.
	Logger *zap.Logger
}

// Recorder tracks operation durations and metric values by name. It is safe
// for concurrent use.
type Recorder struct {
	reportInterval time.Duration
	maxSamples     int
	logger         *zap.Logger

	mu        sync.Mutex
	startTime time.Time
	metrics   map[string]*series[float64]
	timings   map[string]*series[time.Duration]

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type number interface {
	~int64 | ~float64
}

// series keeps a bounded window of samples plus running extremes over all of them.
type series[T number] struct {
	values   []T
	sum      T
	min, max T
	count    int64
}

func (s *series[T]) add(v T, maxSamples int) {
	if s.count == 0 || v < s.min {
		s.min = v
	}
	if s.count == 0 || v > s.max {
		s.max = v
	}
	s.values = append(s.values, v)
	s.sum += v
	if len(s.values) > maxSamples {
		s.sum -= s.values[0]
		s.values = s.values[1:]
	}
	s.count++
}

func (s *series[T]) stats() Stats[T] {
	st := Stats[T]{Count: s.count, Min: s.min, Max: s.max}
	if n := len(s.values); n > 0 {
		st.Mean = s.sum / T(n)
		sorted := append([]T(nil), s.values...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		st.P95 = sorted[(n*95-1)/100]
	}
	return st
}

// Stats summarizes a name. Mean and P95 cover the kept window; Count, Min and
// Max cover every sample.
type Stats[T number] struct {
	Count int64
	Min   T
	Max   T
	Mean  T
	P95   T
}

// New returns a recorder.
func New(opts Options) *Recorder {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultMaxSamples
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Recorder{
		reportInterval: opts.ReportInterval,
		maxSamples:     opts.MaxSamples,
		logger:         opts.Logger,
		startTime:      time.Now(),
		metrics:        make(map[string]*series[float64]),
		timings:        make(map[string]*series[time.Duration]),
	}
}

// Start emits a report every ReportInterval until Stop is called or ctx ends.
// Calling Start on a running recorder does nothing.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Report()
			}
		}
	}()
}

// Stop ends the background reports and waits for them to finish.
func (r *Recorder) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		r.wg.Wait()
	}
}

// RecordMetric adds a sample to the named metric.
func (r *Recorder) RecordMetric(name string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.metrics[name]
	if !ok {
		s = &series[float64]{}
		r.metrics[name] = s
	}
	s.add(value, r.maxSamples)
}

// RecordDuration adds a sample to the named operation.
func (r *Recorder) RecordDuration(name string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.timings[name]
	if !ok {
		s = &series[time.Duration]{}
		r.timings[name] = s
	}
	s.add(d, r.maxSamples)
}

// StartOperation begins timing an operation and returns the function that
// records it.
func (r *Recorder) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		r.RecordDuration(name, time.Since(start))
	}
}

// Metric returns the summary of the named metric.
func (r *Recorder) Metric(name string) (Stats[float64], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.metrics[name]
	if !ok {
		return Stats[float64]{}, false
	}
	return s.stats(), true
}

// Timing returns the summary of the named operation.
func (r *Recorder) Timing(name string) (Stats[time.Duration], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.timings[name]
	if !ok {
		return Stats[time.Duration]{}, false
	}
	return s.stats(), true
}

// Report logs every operation and metric along with the heap state.
func (r *Recorder) Report() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("runtime",
		zap.Duration("uptime", time.Since(r.startTime).Truncate(time.Millisecond)),
		zap.Int("goroutines", runtime.NumGoroutine()),
		zap.Uint64("heap_alloc", mem.HeapAlloc),
		zap.Uint64("total_alloc", mem.TotalAlloc),
		zap.Uint32("gc_cycles", mem.NumGC))

	for _, name := range sortedKeys(r.timings) {
		st := r.timings[name].stats()
		r.logger.Info("operation",
			zap.String("name", name),
			zap.Int64("count", st.Count),
			zap.Duration("mean", st.Mean),
			zap.Duration("min", st.Min),
			zap.Duration("max", st.Max),
			zap.Duration("p95", st.P95))
	}
	for _, name := range sortedKeys(r.metrics) {
		st := r.metrics[name].stats()
		r.logger.Info("metric",
			zap.String("name", name),
			zap.Int64("count", st.Count),
			zap.Float64("mean", st.Mean),
			zap.Float64("min", st.Min),
			zap.Float64("max", st.Max),
			zap.Float64("p95", st.P95))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/banshee-data/hexapod.report/internal/legtelemetry"
	"github.com/banshee-data/hexapod.report/internal/monitoring"
)

var (
	// ErrNoLine is returned by LineSource.ReadLine when no complete line
	// arrived within the source's read timeout.
	ErrNoLine = errors.New("no line available")

	// ErrAlreadyStarted is returned by Start on a pipeline that has left
	// NotStarted.
	ErrAlreadyStarted = errors.New("pipeline already started")
)

// LineSource yields raw telemetry lines without their terminators.
//
// ReadLine must return within a bounded time: either a line, ErrNoLine, or
// an error. io.EOF marks a clean end of stream; any other error is a
// transport failure. Close releases the underlying transport.
type LineSource interface {
	ReadLine() ([]byte, error)
	Close() error
}

// Sink receives drained records in arrival order.
type Sink interface {
	Merge(rec legtelemetry.LegTelemetry)
}

// State is the pipeline lifecycle state.
type State int32

const (
	NotStarted State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Options configures a Pipeline.
type Options struct {
	// Capacity bounds the record queue. Zero selects DefaultCapacity.
	Capacity int

	// OnParseError, when set, is called from the producer goroutine for
	// every line that matched the telemetry grammar but carried an invalid
	// field.
	OnParseError func(line string, err error)
}

// Stats is a point-in-time view of the pipeline counters.
type Stats struct {
	LinesRead     uint64
	Parsed        uint64
	ParseFailures uint64
	Dropped       uint64
	Merged        uint64
	QueueDepth    int
	QueueCapacity int
}

// Pipeline connects a LineSource to a consumer through a drop-oldest queue.
type Pipeline struct {
	id           uuid.UUID
	source       LineSource
	queue        *Queue[legtelemetry.LegTelemetry]
	onParseError func(string, error)

	state atomic.Int32
	done  chan struct{}

	mu     sync.Mutex // guards cancel and err
	cancel context.CancelFunc
	err    error

	closeOnce sync.Once

	linesRead     atomic.Uint64
	parsed        atomic.Uint64
	parseFailures atomic.Uint64
	merged        atomic.Uint64
}

// New builds a pipeline reading from source. The pipeline owns source from
// here on and closes it when the producer exits.
func New(source LineSource, opts Options) (*Pipeline, error) {
	if source == nil {
		return nil, errors.New("pipeline: nil line source")
	}
	capacity := opts.Capacity
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if capacity < 0 {
		return nil, fmt.Errorf("pipeline: invalid queue capacity %d", opts.Capacity)
	}
	return &Pipeline{
		id:           uuid.New(),
		source:       source,
		queue:        NewQueue[legtelemetry.LegTelemetry](capacity),
		onParseError: opts.OnParseError,
		done:         make(chan struct{}),
	}, nil
}

// ID returns the session identifier used in log lines.
func (p *Pipeline) ID() uuid.UUID { return p.id }

// State returns the current lifecycle state.
func (p *Pipeline) State() State { return State(p.state.Load()) }

// Start launches the producer goroutine. Cancelling ctx has the same effect
// as Stop.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.CompareAndSwap(int32(NotStarted), int32(Running)) {
		return ErrAlreadyStarted
	}
	ctx, p.cancel = context.WithCancel(ctx)

	monitoring.Logf("pipeline %s: started (queue capacity %d)", p.id, p.queue.Cap())
	go p.run(ctx, p.cancel)
	return nil
}

// Stop requests shutdown and waits for the producer to exit. The producer
// finishes its current read, which returns within the source's read
// timeout. Stop on a pipeline that was never started moves it straight to
// Stopped and closes the source. It returns the same error as Err.
func (p *Pipeline) Stop() error {
	if p.state.CompareAndSwap(int32(NotStarted), int32(Stopped)) {
		p.closeSource()
		close(p.done)
		return nil
	}
	if p.state.CompareAndSwap(int32(Running), int32(Stopping)) {
		p.mu.Lock()
		cancel := p.cancel
		p.mu.Unlock()
		cancel()
	}
	return p.Wait()
}

// Done is closed once the pipeline reaches Stopped.
func (p *Pipeline) Done() <-chan struct{} { return p.done }

// Wait blocks until the pipeline is Stopped and returns the transport error
// that stopped it, or nil for a requested stop or end of stream.
func (p *Pipeline) Wait() error {
	<-p.done
	return p.Err()
}

// Err returns the transport error that stopped the pipeline, if any.
func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Drain merges every currently queued record into sink, in arrival order,
// and returns how many were merged. It never blocks and must not be called
// concurrently with itself.
func (p *Pipeline) Drain(sink Sink) int {
	recs := p.queue.Drain()
	for _, rec := range recs {
		sink.Merge(rec)
	}
	p.merged.Add(uint64(len(recs)))
	return len(recs)
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		LinesRead:     p.linesRead.Load(),
		Parsed:        p.parsed.Load(),
		ParseFailures: p.parseFailures.Load(),
		Dropped:       p.queue.Dropped(),
		Merged:        p.merged.Load(),
		QueueDepth:    p.queue.Len(),
		QueueCapacity: p.queue.Cap(),
	}
}

func (p *Pipeline) run(ctx context.Context, cancel context.CancelFunc) {
	err := p.produce(ctx)
	cancel()
	p.closeSource()

	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	p.state.Store(int32(Stopped))
	close(p.done)

	if err != nil {
		monitoring.Logf("pipeline %s: stopped on read failure: %v", p.id, err)
		return
	}
	monitoring.Logf("pipeline %s: stopped", p.id)
}

func (p *Pipeline) produce(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			p.state.CompareAndSwap(int32(Running), int32(Stopping))
			return nil
		}

		raw, err := p.source.ReadLine()
		switch {
		case err == nil:
		case errors.Is(err, ErrNoLine):
			continue
		case errors.Is(err, io.EOF):
			monitoring.Logf("pipeline %s: end of stream", p.id)
			return nil
		default:
			return fmt.Errorf("read telemetry: %w", err)
		}

		p.linesRead.Add(1)
		p.handleLine(strings.ToValidUTF8(string(raw), "\uFFFD"))
	}
}

func (p *Pipeline) handleLine(line string) {
	rec, err := legtelemetry.Parse(line)
	if err != nil {
		p.parseFailures.Add(1)
		monitoring.Logf("pipeline %s: dropping line: %v", p.id, err)
		if p.onParseError != nil {
			p.onParseError(line, err)
		}
		return
	}
	if rec == nil {
		return
	}
	p.parsed.Add(1)
	if p.queue.Push(*rec) {
		monitoring.Debugf("pipeline %s: queue full, dropped oldest record", p.id)
	}
}

func (p *Pipeline) closeSource() {
	p.closeOnce.Do(func() {
		if err := p.source.Close(); err != nil {
			monitoring.Logf("pipeline %s: closing source: %v", p.id, err)
		}
	})
}

// Package snow produces decorative falling-snow particles.
//
// A Field spawns an initial batch and then one particle per interval until it
// is stopped. Every particle carries a removal token scheduled for the end of
// its fall; stopping the field only halts production, pending removals still
// run.
package snow

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

// Defaults
const (
	DefaultInterval     = 300 * time.Millisecond
	DefaultInitialBatch = 30
)

// Range is an inclusive float interval
type Range struct {
	Min, Max float64
}

func (r Range) pick(rnd *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rnd.Float64()*(r.Max-r.Min)
}

// Config holds the spawn parameters
type Config struct {
	Interval     time.Duration
	InitialBatch int
	Size         Range // px
	Left         Range // percent of container width
	Duration     Range // seconds of fall
	Delay        Range // seconds before the fall starts
	Opacity      Range
	Drift        Range // horizontal px over the fall
}

// DefaultConfig returns the reference parameters
func DefaultConfig() Config {
	return Config{
		Interval:     DefaultInterval,
		InitialBatch: DefaultInitialBatch,
		Size:         Range{2, 7},
		Left:         Range{0, 100},
		Duration:     Range{5, 15},
		Delay:        Range{0, 5},
		Opacity:      Range{0.3, 1},
		Drift:        Range{-50, 50},
	}
}

// Particle is one snowflake
type Particle struct {
	ID       uint64  `json:"id"`
	Size     float64 `json:"size"`
	Left     float64 `json:"left"`
	Duration float64 `json:"duration"`
	Delay    float64 `json:"delay"`
	Opacity  float64 `json:"opacity"`
	Drift    float64 `json:"drift"`
}

// Lifetime is how long the particle stays in the field
func (p Particle) Lifetime() time.Duration {
	return time.Duration((p.Delay + p.Duration) * float64(time.Second))
}

// EventKind tells subscribers what happened
type EventKind string

const (
	Spawned EventKind = "spawn"
	Removed EventKind = "remove"
)

// Event is sent to subscribers
type Event struct {
	Kind     EventKind `json:"kind"`
	Particle Particle  `json:"particle"`
}

// Field owns the live particles
type Field struct {
	cfg Config

	mu        sync.Mutex
	rnd       *rand.Rand
	nextID    uint64
	particles map[uint64]Particle
	subs      map[chan Event]struct{}
	started   bool

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a stopped field. Zero config values take the defaults.
func New(cfg Config) *Field {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.InitialBatch < 0 {
		cfg.InitialBatch = 0
	}
	if cfg.Size == (Range{}) {
		cfg.Size = def.Size
	}
	if cfg.Left == (Range{}) {
		cfg.Left = def.Left
	}
	if cfg.Duration == (Range{}) {
		cfg.Duration = def.Duration
	}
	if cfg.Delay == (Range{}) {
		cfg.Delay = def.Delay
	}
	if cfg.Opacity == (Range{}) {
		cfg.Opacity = def.Opacity
	}
	if cfg.Drift == (Range{}) {
		cfg.Drift = def.Drift
	}

	return &Field{
		cfg:       cfg,
		rnd:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
		particles: make(map[uint64]Particle),
		subs:      make(map[chan Event]struct{}),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start spawns the initial batch and then produces until Stop or ctx is done.
// Calling Start more than once has no effect.
func (f *Field) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return
	}
	f.started = true
	f.mu.Unlock()

	select {
	case <-f.stop:
		close(f.done)
		return
	default:
	}

	for i := 0; i < f.cfg.InitialBatch; i++ {
		f.spawn()
	}

	go f.produce(ctx)
}

func (f *Field) produce(ctx context.Context) {
	defer close(f.done)

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.stop:
			return
		case <-ticker.C:
			// A tick racing with Stop must not spawn.
			select {
			case <-f.stop:
				return
			default:
			}
			f.spawn()
		}
	}
}

// Stop halts future spawning and waits for the producer to exit.
// Particles already in the field are still removed on schedule.
func (f *Field) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })

	f.mu.Lock()
	started := f.started
	f.mu.Unlock()
	if started {
		<-f.done
	}
}

func (f *Field) spawn() Particle {
	f.mu.Lock()
	f.nextID++
	p := Particle{
		ID:       f.nextID,
		Size:     f.cfg.Size.pick(f.rnd),
		Left:     f.cfg.Left.pick(f.rnd),
		Duration: f.cfg.Duration.pick(f.rnd),
		Delay:    f.cfg.Delay.pick(f.rnd),
		Opacity:  f.cfg.Opacity.pick(f.rnd),
		Drift:    f.cfg.Drift.pick(f.rnd),
	}
	f.particles[p.ID] = p
	f.broadcastLocked(Event{Kind: Spawned, Particle: p})
	f.mu.Unlock()

	// Removal token
	time.AfterFunc(p.Lifetime(), func() { f.remove(p.ID) })
	return p
}

func (f *Field) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.particles[id]
	if !ok {
		return
	}
	delete(f.particles, id)
	f.broadcastLocked(Event{Kind: Removed, Particle: p})
}

// broadcastLocked drops events for subscribers that are not keeping up
func (f *Field) broadcastLocked(ev Event) {
	for ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Snapshot returns the live particles ordered by id
func (f *Field) Snapshot() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Particle, 0, len(f.particles))
	for _, p := range f.particles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of live particles
func (f *Field) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.particles)
}

// Total returns how many particles were produced so far
func (f *Field) Total() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextID
}

// Subscribe streams spawn and remove events. The returned func unsubscribes.
func (f *Field) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
		})
	}
}

package timer

import (
	"sync"
	"time"
)

// Phase is a stage of the Pomodoro cycle.
type Phase string

const (
	PhaseWork      Phase = "work"
	PhaseBreak     Phase = "break"
	PhaseLongBreak Phase = "long_break"
)

// Label returns a human-readable phase name.
func (p Phase) Label() string {
	switch p {
	case PhaseBreak:
		return "Short Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return "Focus"
	}
}

// Kind collapses both break variants into KindBreak.
func (p Phase) Kind() Kind {
	if p == PhaseWork {
		return KindWork
	}
	return KindBreak
}

// Kind selects the notification variant for a completed phase.
type Kind string

const (
	KindWork  Kind = "work"
	KindBreak Kind = "break"
)

// Status is the run state of the countdown.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
)

// Notifier receives phase-complete notifications. Implementations must not
// block.
type Notifier interface {
	Notify(kind Kind, sound Sound, volume float64)
}

// State is a point-in-time snapshot of the engine.
type State struct {
	Phase                 Phase
	Status                Status
	SecondsLeft           int
	TotalSeconds          int
	SessionsCompleted     int
	CurrentSessionInCycle int
	Settings              Settings
}

// Progress returns the elapsed fraction of the current phase in [0,1].
func (s State) Progress() float64 {
	if s.TotalSeconds <= 0 {
		return 0
	}
	return 1 - float64(s.SecondsLeft)/float64(s.TotalSeconds)
}

// Remaining returns SecondsLeft as a time.Duration.
func (s State) Remaining() time.Duration {
	return time.Duration(s.SecondsLeft) * time.Second
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to schedule the countdown.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithNotifier sets the sink that is told when a phase completes naturally.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithPhaseCompleteHook registers a callback run after a phase completes
// naturally. It receives the phase that just finished.
func WithPhaseCompleteHook(fn func(Phase)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// WithSettingsHook registers a callback run after every accepted settings
// change, typically to persist them.
func WithSettingsHook(fn func(Settings)) Option {
	return func(e *Engine) { e.onSettings = fn }
}

// Engine owns the timer state machine and its 1 Hz countdown.
//
// The countdown runs on a single ticker that is armed when the status
// becomes running and cancelled whenever it leaves running. Every arming
// gets a new generation; ticks from an older generation are dropped.
type Engine struct {
	mu sync.Mutex

	clock      Clock
	notifier   Notifier
	onComplete func(Phase)
	onSettings func(Settings)

	settings          Settings
	phase             Phase
	status            Status
	secondsLeft       int
	sessionsCompleted int
	cycle             int

	ticker Ticker
	stop   chan struct{}
	gen    uint64

	subs   []chan State
	closed bool
}

// completion describes a naturally finished phase, dispatched outside the lock.
type completion struct {
	phase  Phase
	sound  Sound
	volume float64
}

// New creates an idle engine at the start of a work phase. Invalid settings
// fields are replaced by defaults.
func New(settings Settings, opts ...Option) *Engine {
	settings = settings.Sanitized()
	e := &Engine{
		clock:       SystemClock(),
		settings:    settings,
		phase:       PhaseWork,
		status:      StatusIdle,
		secondsLeft: settings.WorkDuration,
		cycle:       1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Subscribe returns a channel that receives the latest state after every
// change. Only the most recent state is buffered; slow readers skip
// intermediate states. The channel is closed by Close.
func (e *Engine) Subscribe() <-chan State {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch := make(chan State, 1)
	if e.closed {
		close(ch)
		return ch
	}
	ch <- e.snapshotLocked()
	e.subs = append(e.subs, ch)
	return ch
}

// Start begins or resumes the countdown. It is a no-op while running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.status == StatusRunning {
		return
	}
	e.status = StatusRunning
	e.arm()
	e.publish()
}

// Pause suspends a running countdown.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusRunning {
		return
	}
	e.disarm()
	e.status = StatusPaused
	e.publish()
}

// Reset stops the countdown and refills the current phase. Phase and
// session counters are unchanged.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarm()
	e.secondsLeft = e.settings.Duration(e.phase)
	e.status = StatusIdle
	e.publish()
}

// Skip ends the current phase immediately, applying the same transition as
// a natural completion. No notification is sent.
func (e *Engine) Skip() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.advance()
	e.publish()
}

// UpdateSettings merges the valid fields of patch. While idle the current
// phase is refilled with the new duration; otherwise the new durations apply
// from the next phase switch or reset. It reports whether anything changed.
func (e *Engine) UpdateSettings(patch SettingsPatch) bool {
	e.mu.Lock()
	next, changed := e.settings.Apply(patch)
	if !changed {
		e.mu.Unlock()
		return false
	}
	e.settings = next
	total := next.Duration(e.phase)
	if e.status == StatusIdle {
		e.secondsLeft = total
	} else if e.secondsLeft > total {
		e.secondsLeft = total
	}
	if e.cycle > next.SessionsBeforeLongBreak {
		e.cycle = next.SessionsBeforeLongBreak
	}
	e.publish()
	hook := e.onSettings
	e.mu.Unlock()

	if hook != nil {
		hook(next)
	}
	return true
}

// Tick advances a running countdown by one second. It does nothing unless
// the engine is running. The scheduled ticker calls it once per second.
func (e *Engine) Tick() {
	e.mu.Lock()
	e.tickLocked(e.gen)
}

// Close cancels the countdown and closes all subscriber channels. A running
// countdown is left paused, and subscribers see that state before their
// channel closes.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.disarm()
	if e.status == StatusRunning {
		e.status = StatusPaused
		e.publish()
	}
	e.closed = true
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}

// tickLocked must be called with e.mu held; it releases the lock before
// dispatching notifications.
func (e *Engine) tickLocked(gen uint64) {
	if gen != e.gen || e.status != StatusRunning {
		e.mu.Unlock()
		return
	}

	var done *completion
	if e.secondsLeft > 1 {
		e.secondsLeft--
	} else {
		done = &completion{
			phase:  e.phase,
			sound:  e.settings.NotificationSound,
			volume: e.settings.Volume,
		}
		e.secondsLeft = 0
		e.advance()
	}
	e.publish()
	notifier, hook := e.notifier, e.onComplete
	e.mu.Unlock()

	if done == nil {
		return
	}
	if notifier != nil {
		notifier.Notify(done.phase.Kind(), done.sound, done.volume)
	}
	if hook != nil {
		hook(done.phase)
	}
}

// advance applies the phase-completion transition.
func (e *Engine) advance() {
	if e.phase != PhaseWork {
		e.switchPhase(PhaseWork)
		return
	}
	e.sessionsCompleted++
	if e.cycle >= e.settings.SessionsBeforeLongBreak {
		e.cycle = 1
		e.switchPhase(PhaseLongBreak)
		return
	}
	e.cycle++
	e.switchPhase(PhaseBreak)
}

func (e *Engine) switchPhase(next Phase) {
	e.disarm()
	e.phase = next
	e.secondsLeft = e.settings.Duration(next)
	e.status = StatusIdle
}

func (e *Engine) arm() {
	e.disarm()
	e.gen++
	gen := e.gen
	t := e.clock.NewTicker(time.Second)
	stop := make(chan struct{})
	e.ticker, e.stop = t, stop
	go e.run(gen, t, stop)
}

func (e *Engine) disarm() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	close(e.stop)
	e.ticker, e.stop = nil, nil
	e.gen++
}

func (e *Engine) run(gen uint64, t Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			e.mu.Lock()
			e.tickLocked(gen)
		}
	}
}

func (e *Engine) snapshotLocked() State {
	return State{
		Phase:                 e.phase,
		Status:                e.status,
		SecondsLeft:           e.secondsLeft,
		TotalSeconds:          e.settings.Duration(e.phase),
		SessionsCompleted:     e.sessionsCompleted,
		CurrentSessionInCycle: e.cycle,
		Settings:              e.settings,
	}
}

// publish replaces whatever state each subscriber has not read yet.
func (e *Engine) publish() {
	st := e.snapshotLocked()
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}

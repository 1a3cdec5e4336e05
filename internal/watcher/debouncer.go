package watcher

import (
	"sync"
	"time"
)

// Debouncer runs a task once a quiet period has elapsed since the last
// Trigger. Tasks never overlap: triggers arriving while the task runs
// schedule at most one follow-up run.
type Debouncer struct {
	delay time.Duration
	task  func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // invalidates callbacks of replaced timers
	stopped bool

	queue    chan struct{} // single slot: a run is pending
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewDebouncer starts a debouncer that runs task on its own goroutine.
func NewDebouncer(delay time.Duration, task func()) *Debouncer {
	d := &Debouncer{
		delay:  delay,
		task:   task,
		queue:  make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go d.loop()
	return d
}

// Trigger restarts the quiet period, replacing any pending timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || gen != d.gen {
		return
	}
	d.timer = nil
	select {
	case d.queue <- struct{}{}:
	default: // a run is already pending and will see this burst
	}
}

func (d *Debouncer) loop() {
	defer close(d.done)
	for {
		select {
		case <-d.stopCh:
			return
		case <-d.queue:
			select {
			case <-d.stopCh:
				return
			default:
			}
			d.task()
		}
	}
}

// Stop cancels any pending run and waits for a running task to finish.
// No task starts after Stop returns. Safe to call more than once.
func (d *Debouncer) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		if d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
		d.mu.Unlock()
		close(d.stopCh)
	})
	<-d.done
}

// Package scheduler runs periodic collection, log tailing, aggregation,
// and cleanup tasks against a single store, serialized the way
// core/scheduler.py's Scheduler serializes them behind its db_lock —
// one goroutine drives every tick, so the store's write mutex is never
// actually contended from this package, just defensive against future
// callers.
package scheduler

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logly/logly/aggregate"
	"github.com/logly/logly/collector"
	"github.com/logly/logly/model"
	"github.com/logly/logly/store"
	"github.com/logly/logly/tailer"
	"github.com/logly/logly/tracer"
)

// Task is one named, independently intervaled unit of work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs a fixed set of Tasks on their own intervals from a
// single background goroutine, polling once a second the way
// core/scheduler.py's _run loop does (`scheduler.run(blocking=False)`
// then `time.sleep(1)`), rather than spinning up one timer goroutine
// per task.
type Scheduler struct {
	tasks   []*scheduledTask
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type scheduledTask struct {
	Task
	nextRun time.Time
}

// New builds a Scheduler for the given tasks. Every task's first run
// happens on the first tick after Start, matching the "run immediately
// at time 0" behavior of _schedule_repeating.
func New(tasks []Task) *Scheduler {
	s := &Scheduler{stopCh: make(chan struct{}), doneCh: make(chan struct{})}
	now := time.Now()
	for _, t := range tasks {
		s.tasks = append(s.tasks, &scheduledTask{Task: t, nextRun: now})
	}
	return s
}

// Start runs the scheduler loop in a background goroutine. It returns
// immediately; call Stop or cancel ctx to shut it down.
func (s *Scheduler) Start(ctx context.Context) {
	if s.running {
		log.Println("scheduler already running")
		return
	}
	s.running = true
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.running = false
			return
		case <-s.stopCh:
			s.running = false
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	for _, t := range s.tasks {
		if now.Before(t.nextRun) {
			continue
		}
		if err := t.Run(ctx); err != nil {
			log.Printf("scheduler: %s: %v", t.Name, err)
		}
		t.nextRun = now.Add(t.Interval)
	}
}

// Stop signals the background goroutine to exit and waits for it,
// mirroring _run's running flag plus Thread.join(timeout=5).
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	close(s.stopCh)
	select {
	case <-s.doneCh:
	case <-time.After(5 * time.Second):
		log.Println("scheduler: stop timed out waiting for loop to exit")
	}
}

// RunOnce runs every registered task exactly once, synchronously —
// the Go analogue of run_once(), used by `logly collect` and tests.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	for _, t := range s.tasks {
		if err := t.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// WaitForSignal blocks until SIGINT or SIGTERM, then calls Stop. Used
// by the `logly start` command's foreground run loop.
func WaitForSignal(s *Scheduler) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("logly: received shutdown signal")
	s.Stop()
}

// BuildDefaultTasks wires the standard system/network/log/aggregation/
// cleanup tasks against one store, mirroring Scheduler.start()'s five
// _schedule_repeating calls (system metrics, network metrics, log
// parsing, hourly aggregations, daily cleanup).
func BuildDefaultTasks(st *store.Store, sys *collector.SystemSampler, net *collector.NetworkSampler, tl *tailer.Tailer, tc *tracer.TracerCollector, retention store.RetentionPolicy, intervals Intervals) []Task {
	var tasks []Task

	if sys != nil {
		tasks = append(tasks, Task{
			Name:     "system metrics",
			Interval: intervals.System,
			Run: func(ctx context.Context) error {
				v, err := sys.Sample(ctx)
				if err != nil {
					return err
				}
				return st.InsertSystemMetric(v.(model.SystemMetric))
			},
		})
	}

	if net != nil {
		tasks = append(tasks, Task{
			Name:     "network metrics",
			Interval: intervals.Network,
			Run: func(ctx context.Context) error {
				v, err := net.Sample(ctx)
				if err != nil {
					return err
				}
				return st.InsertNetworkMetric(v.(model.NetworkMetric))
			},
		})
	}

	if tl != nil {
		tasks = append(tasks, Task{
			Name:     "log parsing",
			Interval: intervals.Logs,
			Run: func(ctx context.Context) error {
				events, err := tl.Poll()
				if err != nil {
					return err
				}
				for _, e := range events {
					id, err := st.InsertLogEvent(e)
					if err != nil {
						return err
					}
					e.ID = id
					in := tc.Trace(e, 0)
					if _, err := st.InsertEventTrace(toStoreInput(in)); err != nil {
						return err
					}
				}
				return nil
			},
		})
	}

	agg := aggregate.New(st, true, true, true)
	tasks = append(tasks, Task{
		Name:     "aggregations",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			now := time.Now()
			if err := agg.RunHourly(now); err != nil {
				return err
			}
			if now.UTC().Hour() == 0 {
				return agg.RunDaily(now)
			}
			return nil
		},
	})

	tasks = append(tasks, Task{
		Name:     "data cleanup",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			return st.CleanupOldData(time.Now().Unix(), retention)
		},
	})

	return tasks
}

// Intervals configures how often each periodic task runs.
type Intervals struct {
	System  time.Duration
	Network time.Duration
	Logs    time.Duration
}

func toStoreInput(in tracer.TraceInput) store.EventTraceInput {
	return store.EventTraceInput{
		Trace:         in.Trace,
		Processes:     in.Processes,
		Networks:      in.Networks,
		Error:         in.Error,
		IP:            in.IP,
		IPType:        in.IPType,
		IsBlacklisted: in.IsBlacklisted,
		IsWhitelisted: in.IsWhitelisted,
		FailedLogin:   in.FailedLogin,
		Banned:        in.Banned,
	}
}

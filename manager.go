/*
   Copyright 2024 Arborist Labs

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package behaviortree

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joeycumines/go-bigbuff"
	opentracing "github.com/opentracing/opentracing-go"
)

// ErrManagerStopped is returned by Manager.TickTree once the manager has
// been stopped, mirroring the teacher's ErrManagerStopped. Run itself
// returns nil when stopped.
var ErrManagerStopped = errors.New("behaviortree: manager already stopped")

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// TickRate is the fixed tick frequency used by Run, in Hz. Ignored by
	// a direct TickTree call.
	TickRate float64
	// Logger receives structured diagnostics; defaults to slog.Default().
	Logger *slog.Logger
	// Tracer, if non-nil, wraps every tick in a span named after the
	// root node, following stntngo's run.go/tracing.go pattern.
	Tracer opentracing.Tracer
	// MaxWorkers bounds the worker pool used to offload synchronous
	// leaf callbacks; 0 disables pooled offload (callbacks run inline).
	MaxWorkers int
}

// Manager owns a root Node and drives it, directly or on a fixed-rate
// schedule, exposing pause/resume, snapshotting, subtree registration, and
// persistence, per the tree_manager.BehaviorTreeManager of the Python
// original. It is built on the same github.com/joeycumines/go-bigbuff
// Worker primitive the teacher's manager.go uses to serialize control
// operations against the run loop.
type Manager struct {
	cfg  ManagerConfig
	root *Node
	bb   *Blackboard
	pool *workerPool

	mu       sync.Mutex
	worker   bigbuff.Worker
	paused   bool
	stopped  bool
	stopCh   chan struct{}
	stopOnce sync.Once

	subtreesMu sync.RWMutex
	subtrees   map[string]*Node

	stats managerStats
}

type managerStats struct {
	mu         sync.Mutex
	totalTicks uint64
	lastStatus NodeStatus
	lastTick   time.Time
}

// NewManager constructs a Manager for root, wired to a fresh Blackboard.
func NewManager(root *Node, cfg ManagerConfig) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	bb := NewBlackboard()
	root.Initialize(bb)
	m := &Manager{
		cfg:      cfg,
		root:     root,
		bb:       bb,
		stopCh:   make(chan struct{}),
		subtrees: make(map[string]*Node),
	}
	if cfg.MaxWorkers > 0 {
		m.pool = newWorkerPool(cfg.MaxWorkers)
	}
	return m
}

// Blackboard returns the manager's shared blackboard.
func (m *Manager) Blackboard() *Blackboard { return m.bb }

// Root returns the managed root node.
func (m *Manager) Root() *Node { return m.root }

// TickTree ticks the root node exactly once, unless the manager is paused
// (in which case it returns the last-observed status without ticking) or
// stopped (in which case it returns ErrManagerStopped).
func (m *Manager) TickTree(ctx context.Context) (NodeStatus, error) {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return Error, ErrManagerStopped
	}
	if m.paused {
		status := m.root.Status()
		m.mu.Unlock()
		return status, nil
	}
	m.mu.Unlock()

	ctx = withWorkerPool(ctx, m.pool)

	var span opentracing.Span
	if m.cfg.Tracer != nil {
		span = m.cfg.Tracer.StartSpan("behaviortree.tick." + m.root.Name())
		ctx = opentracing.ContextWithSpan(ctx, span)
	}
	status, err := m.root.Tick(ctx)
	if span != nil {
		span.Finish()
	}

	m.stats.mu.Lock()
	m.stats.totalTicks++
	m.stats.lastStatus = status
	m.stats.lastTick = time.Now()
	m.stats.mu.Unlock()

	if err != nil {
		m.cfg.Logger.Error("tick error", "node", m.root.Path(), "error", err)
	}
	return status, err
}

// Run ticks the tree at cfg.TickRate Hz until ctx is cancelled or Stop is
// called, in the style of the teacher's NewTicker run loop built on
// time.Ticker, serialized through the manager's bigbuff.Worker so
// Pause/Resume/Stop never race a tick.
func (m *Manager) Run(ctx context.Context) error {
	if m.cfg.TickRate <= 0 {
		return errors.New("behaviortree: Manager.Run requires TickRate > 0")
	}
	interval := time.Duration(float64(time.Second) / m.cfg.TickRate)
	done := m.worker.Do(func(stop <-chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				if _, err := m.TickTree(ctx); err != nil && !errors.Is(err, ErrManagerStopped) {
					m.cfg.Logger.Error("run loop tick failed", "error", err)
				}
			}
		}
	})
	defer done()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.stopCh:
		return nil
	}
}

// Pause suspends ticking; TickTree becomes a no-op returning the last
// status until Resume is called.
func (m *Manager) Pause() {
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
}

// Resume reverses Pause.
func (m *Manager) Resume() {
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
}

// Stop halts the manager: Run returns, and subsequent TickTree calls return
// ErrManagerStopped. Idempotent.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.stopped = true
		m.mu.Unlock()
		close(m.stopCh)
		if m.pool != nil {
			m.pool.close()
		}
	})
}

// RegisterSubtree makes root addressable by name for later GetSubtree
// lookups and config-driven tree assembly, initializing it against the
// manager's shared blackboard.
func (m *Manager) RegisterSubtree(name string, root *Node) {
	root.Initialize(m.bb)
	m.subtreesMu.Lock()
	m.subtrees[name] = root
	m.subtreesMu.Unlock()
}

// GetSubtree returns a previously registered subtree, or nil if name is
// unknown.
func (m *Manager) GetSubtree(name string) *Node {
	m.subtreesMu.RLock()
	defer m.subtreesMu.RUnlock()
	return m.subtrees[name]
}

// ManagerStats is a point-in-time snapshot of aggregate execution
// statistics.
type ManagerStats struct {
	TotalTicks uint64
	LastStatus NodeStatus
	LastTick   time.Time
	RootPath   string
}

// GetStats returns a snapshot of the manager's aggregate run statistics.
func (m *Manager) GetStats() ManagerStats {
	m.stats.mu.Lock()
	defer m.stats.mu.Unlock()
	return ManagerStats{
		TotalTicks: m.stats.totalTicks,
		LastStatus: m.stats.lastStatus,
		LastTick:   m.stats.lastTick,
		RootPath:   m.root.Path(),
	}
}

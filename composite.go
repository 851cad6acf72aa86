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
)

// MemoryPolicy controls whether a Sequence/Selector remembers which child
// it left off on across Running outcomes.
type MemoryPolicy int

const (
	// FreshMemory restarts from the first child on every tick.
	FreshMemory MemoryPolicy = iota
	// PersistentMemory resumes from the child that last returned Running.
	PersistentMemory
)

func (m MemoryPolicy) String() string {
	if m == PersistentMemory {
		return "persistent"
	}
	return "fresh"
}

// Sequence succeeds only if every child succeeds, in order, short-circuiting
// on the first Failure/Error. With PersistentMemory it resumes ticking from
// the child that last returned Running instead of restarting at index 0,
// mirroring nodes.composites.SequenceNode of the Python original.
func Sequence(name string, memory MemoryPolicy, children ...*Node) *Node {
	state := &memoryState{}
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		start := 0
		if memory == PersistentMemory {
			start = state.index
		}
		for i := start; i < len(children); i++ {
			status, err := children[i].Tick(ctx)
			if err != nil || status == Error {
				state.index = 0
				return Error, err
			}
			switch status {
			case Running:
				state.index = i
				return Running, nil
			case Failure:
				state.index = 0
				return Failure, nil
			}
		}
		state.index = 0
		return Success, nil
	}
	n := NewNode(name, tick, children)
	n.setResetHook(func() { state.index = 0 })
	return n
}

// Selector succeeds as soon as any child succeeds, short-circuiting on the
// first Success; it fails only if every child fails. With PersistentMemory
// it resumes from the child that last returned Running.
func Selector(name string, memory MemoryPolicy, children ...*Node) *Node {
	state := &memoryState{}
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		start := 0
		if memory == PersistentMemory {
			start = state.index
		}
		for i := start; i < len(children); i++ {
			status, err := children[i].Tick(ctx)
			if err != nil || status == Error {
				state.index = 0
				return Error, err
			}
			switch status {
			case Running:
				state.index = i
				return Running, nil
			case Success:
				state.index = 0
				return Success, nil
			}
		}
		state.index = 0
		return Failure, nil
	}
	n := NewNode(name, tick, children)
	n.setResetHook(func() { state.index = 0 })
	return n
}

type memoryState struct{ index int }

// ReactiveSequence re-evaluates every preceding child from index 0 on each
// tick (no memory of where it left off), succeeding only when all children
// succeed in the same tick and stopping at the first Running/Failure.
func ReactiveSequence(name string, children ...*Node) *Node {
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		for _, c := range children {
			status, err := c.Tick(ctx)
			if err != nil || status == Error {
				return Error, err
			}
			if status != Success {
				return status, nil
			}
		}
		return Success, nil
	}
	return NewNode(name, tick, children)
}

// ReactiveSelector re-evaluates every child from index 0 on each tick,
// succeeding as soon as one succeeds and failing only once all children
// fail in the same tick.
func ReactiveSelector(name string, children ...*Node) *Node {
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		for _, c := range children {
			status, err := c.Tick(ctx)
			if err != nil || status == Error {
				return Error, err
			}
			if status != Failure {
				return status, nil
			}
		}
		return Failure, nil
	}
	return NewNode(name, tick, children)
}

// ParallelPolicy controls how a Parallel composite's children are composed
// into an aggregate result.
type ParallelPolicy int

const (
	// RequireAll succeeds only once every child has succeeded; a single
	// failure fails the whole composite.
	RequireAll ParallelPolicy = iota
	// RequireOne succeeds once any child succeeds; all must fail for the
	// composite to fail.
	RequireOne
	// SequenceStar ticks children concurrently like every other policy and
	// resolves with the same default thresholds as RequireAll, so a single
	// failure ends the tick even while other children are still Running.
	SequenceStar
	// SelectorStar resolves with the same default thresholds as RequireOne,
	// so a single success ends the tick even while other children are
	// still Running.
	SelectorStar
)

func (p ParallelPolicy) String() string {
	switch p {
	case RequireAll:
		return "require_all"
	case RequireOne:
		return "require_one"
	case SequenceStar:
		return "sequence_star"
	case SelectorStar:
		return "selector_star"
	default:
		return "unknown"
	}
}

// ParallelOptions configures a Parallel composite's completion thresholds.
// A SuccessThreshold/FailureThreshold of 0 takes the policy's default:
// RequireOne/SelectorStar need one success or every child failing,
// RequireAll/SequenceStar need every child succeeding or one failure; a
// positive value overrides the count needed to resolve early. Synchronized, when
// true, keeps each child's terminal status (Success/Failure) pinned across
// ticks and only re-ticks children that have not yet reported one; when
// false (the default) every child is re-ticked from scratch each tick.
type ParallelOptions struct {
	Policy           ParallelPolicy
	SuccessThreshold int
	FailureThreshold int
	Synchronized     bool
}

// Parallel ticks every child concurrently, each under a context derived
// from ctx, and aggregates their statuses per opts.Policy/thresholds,
// following nodes.composites.ParallelNode. As soon as the policy's
// outcome is decided, Parallel cancels the shared derived context (so a
// still-Running child, e.g. one blocked on a slow I/O call, observes
// cancellation) and returns without waiting for stragglers to finish;
// their eventual Tick results are discarded.
func Parallel(name string, opts ParallelOptions, children ...*Node) *Node {
	reported := make(map[string]NodeStatus)
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		n := len(children)
		if n == 0 {
			return Success, nil
		}

		successThreshold := opts.SuccessThreshold
		failureThreshold := opts.FailureThreshold
		switch opts.Policy {
		case RequireOne, SelectorStar:
			// SUCCESS as soon as one child succeeds, unless overridden.
			if successThreshold <= 0 {
				successThreshold = 1
			}
			if failureThreshold <= 0 {
				failureThreshold = n
			}
		default: // RequireAll, SequenceStar
			// FAILURE as soon as one child fails, unless overridden.
			if successThreshold <= 0 {
				successThreshold = n
			}
			if failureThreshold <= 0 {
				failureThreshold = 1
			}
		}

		if !opts.Synchronized {
			reported = make(map[string]NodeStatus)
		}

		pending := make([]*Node, 0, n)
		for _, c := range children {
			if st, ok := reported[c.Path()]; !ok || st == Running {
				pending = append(pending, c)
			}
		}

		// Seed the running counts from prior rounds' already-terminal
		// children (only relevant under Synchronized; empty otherwise).
		successCount, failureCount := 0, 0
		for _, c := range children {
			switch reported[c.Path()] {
			case Success:
				successCount++
			case Failure:
				failureCount++
			}
		}

		type result struct {
			path   string
			status NodeStatus
			err    error
		}
		results := make(chan result, len(pending))
		childCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		for _, c := range pending {
			c := c
			go func() {
				status, err := c.Tick(childCtx)
				results <- result{c.Path(), status, err}
			}()
		}

		finish := func(status NodeStatus) (NodeStatus, error) {
			if opts.Synchronized {
				reported = make(map[string]NodeStatus)
			}
			return status, nil
		}

		var firstErr error
		for i := 0; i < len(pending); i++ {
			r := <-results
			if r.err != nil || r.status == Error {
				if firstErr == nil {
					firstErr = r.err
				}
				if opts.Synchronized {
					reported = make(map[string]NodeStatus)
				}
				return Error, firstErr
			}
			reported[r.path] = r.status
			switch r.status {
			case Success:
				successCount++
			case Failure:
				failureCount++
			}

			switch opts.Policy {
			case RequireOne, SelectorStar:
				if successCount >= successThreshold {
					return finish(Success)
				}
				if failureCount >= failureThreshold {
					return finish(Failure)
				}
			default: // RequireAll, SequenceStar
				if failureCount >= failureThreshold {
					return finish(Failure)
				}
				if successCount >= successThreshold {
					return finish(Success)
				}
			}
		}
		return Running, nil
	}
	n := NewNode(name, tick, children)
	n.setResetHook(func() { reported = make(map[string]NodeStatus) })
	return n
}

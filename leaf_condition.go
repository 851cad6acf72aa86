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
	"fmt"
	"sync"
)

// PredicateFunc is an arbitrary boolean test a Condition leaf may wrap
// instead of (or alongside) a blackboard comparison.
type PredicateFunc func(ctx context.Context) (bool, error)

// ConditionStats accumulates per-leaf check counters, mirroring the
// "stats" dict tracked by ConditionNode in the Python original.
type ConditionStats struct {
	mu            sync.Mutex
	TotalChecks   uint64
	TrueResults   uint64
	FalseResults  uint64
	ErrorChecks   uint64
	LastResult    bool
	LastError     error
}

func (s *ConditionStats) record(ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalChecks++
	if err != nil {
		s.ErrorChecks++
		s.LastError = err
		return
	}
	if ok {
		s.TrueResults++
	} else {
		s.FalseResults++
	}
	s.LastResult = ok
}

// Snapshot returns a copy of the stats safe for concurrent reads.
func (s *ConditionStats) Snapshot() ConditionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ConditionStats{
		TotalChecks:  s.TotalChecks,
		TrueResults:  s.TrueResults,
		FalseResults: s.FalseResults,
		ErrorChecks:  s.ErrorChecks,
		LastResult:   s.LastResult,
		LastError:    s.LastError,
	}
}

// ConditionOptions configures a Condition/BlackboardCompare leaf.
type ConditionOptions struct {
	// Stats, if non-nil, is updated after every check instead of an
	// internally allocated ConditionStats.
	Stats *ConditionStats
}

// Condition reports Success when predicate returns true, Failure when it
// returns false. A predicate error or panic is itself demoted to Failure
// (never Error, which is reserved for engine faults) and counted in
// ErrorChecks, per nodes.leaves.ConditionNode's error handling.
func Condition(name string, predicate PredicateFunc, opts ...ConditionOptions) *Node {
	stats := conditionStatsFrom(opts)
	tick := func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		var callbackOK bool
		var callbackErr error
		completed := runOffloaded(ctx, func() {
			callbackOK, callbackErr = safePredicateCtx(ctx, predicate)
		})

		var ok bool
		var err error
		if completed {
			ok, err = callbackOK, callbackErr
		} else {
			// the predicate is still running on its pooled goroutine;
			// never read callbackOK/callbackErr again, since that
			// goroutine may still be writing them.
			err = fmt.Errorf("behaviortree: condition %q abandoned: %w", name, ctx.Err())
		}
		stats.record(ok, err)
		if err != nil {
			return Failure, nil
		}
		if ok {
			return Success, nil
		}
		return Failure, nil
	}
	return NewNode(name, tick, nil)
}

func conditionStatsFrom(opts []ConditionOptions) *ConditionStats {
	for _, o := range opts {
		if o.Stats != nil {
			return o.Stats
		}
	}
	return &ConditionStats{}
}

func safePredicateCtx(ctx context.Context, p PredicateFunc) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("behaviortree: panic in condition predicate: %v", r)
		}
	}()
	return p(ctx)
}

// BlackboardCompare reports Success when the blackboard value at key (in
// namespace) satisfies op against expected, using the extended operator set
// (including in/not in/contains/startswith/endswith) from
// nodes.leaves.ConditionNode. A missing key or comparison error is demoted
// to Failure and counted in ErrorChecks, matching Condition's error
// handling rather than surfacing Error.
func BlackboardCompare(name, key, namespace string, op ConditionOp, expected any, opts ...ConditionOptions) *Node {
	stats := conditionStatsFrom(opts)
	n := NewNode(name, nil, nil)
	n.tick = func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		bb := n.Blackboard()
		if bb == nil {
			stats.record(false, fmt.Errorf("behaviortree: condition %q has no blackboard", n.Path()))
			return Failure, nil
		}

		var callbackOK bool
		var callbackErr error
		completed := runOffloaded(ctx, func() {
			entry, found, err := bb.GetEntry(key, namespace)
			if err != nil {
				callbackErr = err
				return
			}
			if !found {
				callbackErr = fmt.Errorf("behaviortree: key %q not found in namespace %q", key, namespace)
				return
			}
			callbackOK, callbackErr = evaluateCondition(entry.Value, op, expected)
		})

		var ok bool
		var err error
		if completed {
			ok, err = callbackOK, callbackErr
		} else {
			// the lookup/comparison is still running on its pooled
			// goroutine; never read callbackOK/callbackErr again,
			// since that goroutine may still be writing them.
			err = fmt.Errorf("behaviortree: condition %q abandoned: %w", name, ctx.Err())
		}
		stats.record(ok, err)
		if err != nil {
			return Failure, nil
		}
		if ok {
			return Success, nil
		}
		return Failure, nil
	}
	return n
}

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
	"math/rand"
	"time"
)

// singleChild panics if children does not contain exactly one node; every
// decorator constructor in this file enforces the ≤1-child invariant this
// way instead of introducing a separate DecoratorNode wrapper type, since
// *Node already carries everything a decorator needs.
func singleChild(children []*Node) *Node {
	if len(children) != 1 {
		panic("behaviortree: decorator requires exactly one child")
	}
	return children[0]
}

// Inverter flips Success to Failure and vice versa; Running and Error pass
// through unchanged.
func Inverter(name string, child *Node) *Node {
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		status, err := singleChild(children).Tick(ctx)
		if err != nil {
			return status, err
		}
		switch status {
		case Success:
			return Failure, nil
		case Failure:
			return Success, nil
		default:
			return status, nil
		}
	}
	return NewNode(name, tick, []*Node{child})
}

// ForceSuccess always reports Success once its child reaches a terminal
// state, passing Running/Error through unchanged.
func ForceSuccess(name string, child *Node) *Node {
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		status, err := singleChild(children).Tick(ctx)
		if err != nil || status == Error {
			return status, err
		}
		if status == Running {
			return Running, nil
		}
		return Success, nil
	}
	return NewNode(name, tick, []*Node{child})
}

// ForceFailure always reports Failure once its child reaches a terminal
// state, passing Running/Error through unchanged.
func ForceFailure(name string, child *Node) *Node {
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		status, err := singleChild(children).Tick(ctx)
		if err != nil || status == Error {
			return status, err
		}
		if status == Running {
			return Running, nil
		}
		return Failure, nil
	}
	return NewNode(name, tick, []*Node{child})
}

// RepeatOptions configures Repeat. NumCycles <= 0 means unbounded
// repetition unless SuccessThreshold or FailureThreshold is also set, in
// which case the decorator stops the first time the respective threshold
// is reached — resolving the spec's open question on -1/unbounded cycles
// in favor of "unbounded unless thresholds say otherwise."
type RepeatOptions struct {
	NumCycles        int
	SuccessThreshold int
	FailureThreshold int
	ResetAfterCycle  bool
}

// Repeat re-ticks its child after each terminal outcome, counting successes
// and failures separately, until NumCycles total cycles have run (if > 0)
// or a configured threshold is hit. With SuccessThreshold set it then
// reports Success if the success count met it, else Failure; with
// SuccessThreshold unset it reports Success only if no cycle failed.
func Repeat(name string, opts RepeatOptions, child *Node) *Node {
	state := &repeatState{}
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		c := singleChild(children)
		status, err := c.Tick(ctx)
		if err != nil || status == Error {
			return Error, err
		}
		if status == Running {
			return Running, nil
		}

		state.cycles++
		if status == Success {
			state.successes++
		} else {
			state.failures++
		}
		if opts.ResetAfterCycle {
			c.Reset()
		}

		done := false
		if opts.NumCycles > 0 && state.cycles >= opts.NumCycles {
			done = true
		}
		if opts.SuccessThreshold > 0 && state.successes >= opts.SuccessThreshold {
			done = true
		}
		if opts.FailureThreshold > 0 && state.failures >= opts.FailureThreshold {
			done = true
		}

		if !done {
			return Running, nil
		}

		result := Failure
		if opts.SuccessThreshold > 0 {
			if state.successes >= opts.SuccessThreshold {
				result = Success
			}
		} else if state.failures == 0 {
			result = Success
		}
		state.cycles, state.successes, state.failures = 0, 0, 0
		return result, nil
	}
	n := NewNode(name, tick, []*Node{child})
	n.setResetHook(func() { state.cycles, state.successes, state.failures = 0, 0, 0 })
	return n
}

type repeatState struct {
	cycles, successes, failures int
}

// RetryOptions configures Retry. MaxAttempts counts the total number of
// tries including the first, so MaxAttempts-1 delays are ever slept —
// resolving the spec's open question on whether the first try counts
// toward the limit.
type RetryOptions struct {
	MaxAttempts       int
	Delay             time.Duration
	ExponentialBackoff bool
	Jitter            time.Duration
}

// Retry re-ticks its child on Failure (not Error, which propagates
// immediately) up to MaxAttempts total attempts, sleeping Delay (optionally
// doubled per attempt, optionally jittered) between tries.
func Retry(name string, opts RetryOptions, child *Node) *Node {
	state := &retryState{}
	rng := rand.New(rand.NewSource(1))
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		c := singleChild(children)
		for {
			status, err := c.Tick(ctx)
			if err != nil || status == Error {
				state.attempt = 0
				return Error, err
			}
			if status == Running {
				return Running, nil
			}
			if status == Success {
				state.attempt = 0
				return Success, nil
			}

			state.attempt++
			if opts.MaxAttempts > 0 && state.attempt >= opts.MaxAttempts {
				state.attempt = 0
				return Failure, nil
			}

			delay := opts.Delay
			if opts.ExponentialBackoff {
				delay = opts.Delay * time.Duration(1<<uint(state.attempt-1))
			}
			if opts.Jitter > 0 {
				delay += time.Duration(rng.Int63n(int64(opts.Jitter)))
			}
			c.Reset()
			if delay > 0 {
				select {
				case <-ctx.Done():
					return Error, ctx.Err()
				case <-time.After(delay):
				}
			}
		}
	}
	n := NewNode(name, tick, []*Node{child})
	n.setResetHook(func() { state.attempt = 0 })
	return n
}

type retryState struct{ attempt int }

// Timeout fails its child's tick (reporting onTimeout, typically Failure)
// if it has been Running continuously for longer than d, cancelling the
// per-tick context passed to the child.
func Timeout(name string, d time.Duration, onTimeout NodeStatus, child *Node) *Node {
	state := &timeoutState{}
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		c := singleChild(children)
		if state.startedAt.IsZero() {
			state.startedAt = time.Now()
		}
		if time.Since(state.startedAt) > d {
			state.startedAt = time.Time{}
			return onTimeout, nil
		}

		childCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		status, err := c.Tick(childCtx)
		if !status.Terminal() && ctx.Err() == nil && childCtx.Err() == context.DeadlineExceeded {
			state.startedAt = time.Time{}
			return onTimeout, nil
		}
		if status != Running {
			state.startedAt = time.Time{}
		}
		if err != nil || status == Error {
			return Error, err
		}
		return status, nil
	}
	n := NewNode(name, tick, []*Node{child})
	n.setResetHook(func() { state.startedAt = time.Time{} })
	return n
}

type timeoutState struct{ startedAt time.Time }

// Delay sleeps preDelay before the first tick of a cycle and postDelay
// after the child reaches a terminal state, reporting Running while either
// sleep is outstanding.
func Delay(name string, preDelay, postDelay time.Duration, child *Node) *Node {
	state := &delayState{}
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		c := singleChild(children)
		if state.postPending {
			if time.Since(state.waitStart) < postDelay {
				return Running, nil
			}
			status := state.postStatus
			state.preDone, state.postPending = false, false
			state.waitStart = time.Time{}
			return status, nil
		}
		if !state.preDone {
			if state.waitStart.IsZero() {
				state.waitStart = time.Now()
			}
			if time.Since(state.waitStart) < preDelay {
				return Running, nil
			}
			state.preDone = true
			state.waitStart = time.Time{}
		}

		status, err := c.Tick(ctx)
		if err != nil || status == Error {
			state.preDone = false
			return Error, err
		}
		if status == Running {
			return Running, nil
		}

		if postDelay > 0 {
			state.postPending, state.postStatus = true, status
			state.waitStart = time.Now()
			return Running, nil
		}

		state.preDone = false
		state.waitStart = time.Time{}
		return status, nil
	}
	n := NewNode(name, tick, []*Node{child})
	n.setResetHook(func() { state.preDone, state.postPending = false, false; state.waitStart = time.Time{} })
	return n
}

type delayState struct {
	preDone     bool
	postPending bool
	postStatus  NodeStatus
	waitStart   time.Time
}

// Cooldown suppresses re-ticking its child for d after a Success, reporting
// Failure without invoking the child while the cooldown is active. If
// resetOnFailure is true, a Failure outcome clears the cooldown clock so
// the child is immediately re-tickable on the next tick.
func Cooldown(name string, d time.Duration, resetOnFailure bool, child *Node) *Node {
	state := &cooldownState{}
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		if !state.until.IsZero() && time.Now().Before(state.until) {
			return Failure, nil
		}
		c := singleChild(children)
		status, err := c.Tick(ctx)
		if err != nil || status == Error {
			return Error, err
		}
		if status == Running {
			return Running, nil
		}
		if status == Success {
			state.until = time.Now().Add(d)
		} else if resetOnFailure {
			state.until = time.Time{}
		}
		return status, nil
	}
	n := NewNode(name, tick, []*Node{child})
	n.setResetHook(func() { state.until = time.Time{} })
	return n
}

type cooldownState struct{ until time.Time }

// CompareOp is the closed set of comparison operators BlackboardCondition
// supports against a blackboard value.
type CompareOp string

const (
	OpEqual        CompareOp = "=="
	OpNotEqual     CompareOp = "!="
	OpGreaterThan  CompareOp = ">"
	OpLessThan     CompareOp = "<"
	OpGreaterEqual CompareOp = ">="
	OpLessEqual    CompareOp = "<="
)

// BlackboardCondition ticks its child only while the blackboard value at
// key (in namespace) satisfies op against expected, reporting Failure
// without ticking the child when the condition is not met.
func BlackboardCondition(name, key, namespace string, op CompareOp, expected any, child *Node) *Node {
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		c := singleChild(children)
		bb := c.Blackboard()
		if bb == nil {
			return Failure, nil
		}
		actual, err := bb.Get(key, namespace)
		if err != nil {
			return Failure, nil
		}
		ok, cmpErr := compareValues(actual, op, expected)
		if cmpErr != nil || !ok {
			return Failure, nil
		}
		return c.Tick(ctx)
	}
	return NewNode(name, tick, []*Node{child})
}

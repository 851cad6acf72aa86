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
	"time"
)

// Throttle runs fn at most once per minInterval, and at most maxExecutions
// times within the trailing windowSize, reporting Failure when either
// bound is currently exceeded instead of invoking fn, following
// nodes.leaves.ThrottleNode._can_execute.
func Throttle(name string, fn ActionFunc, minInterval, windowSize time.Duration, maxExecutions int) *Node {
	state := &throttleState{}
	tick := func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		now := time.Now()
		if !state.lastRun.IsZero() && now.Sub(state.lastRun) < minInterval {
			return Failure, nil
		}
		if maxExecutions > 0 && windowSize > 0 {
			cutoff := now.Add(-windowSize)
			kept := state.history[:0]
			for _, t := range state.history {
				if t.After(cutoff) {
					kept = append(kept, t)
				}
			}
			state.history = kept
			if len(state.history) >= maxExecutions {
				return Failure, nil
			}
		}

		result, _ := safeAction(ctx, fn)
		status := actionResultToStatus(result)
		state.lastRun = now
		if windowSize > 0 {
			state.history = append(state.history, now)
		}
		return status, nil
	}
	n := NewNode(name, tick, nil)
	n.setResetHook(func() { state.lastRun = time.Time{}; state.history = nil })
	return n
}

type throttleState struct {
	lastRun time.Time
	history []time.Time
}

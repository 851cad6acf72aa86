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

// TimedCondition samples predicate at most once per checkInterval over
// duration, then reports Success if the fraction of true samples met
// requiredSuccessRatio. The number of checks is clamped to at least one,
// even if duration < checkInterval, so a degenerate configuration still
// produces a verdict instead of never completing.
func TimedCondition(name string, predicate PredicateFunc, checkInterval, duration time.Duration, requiredSuccessRatio float64) *Node {
	state := &timedConditionState{}
	totalChecks := int(duration / checkInterval)
	if totalChecks < 1 {
		totalChecks = 1
	}
	tick := func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		if state.lastCheck.IsZero() || time.Since(state.lastCheck) >= checkInterval {
			ok, err := safePredicateCtx(ctx, predicate)
			if err != nil {
				state.reset()
				return Error, err
			}
			state.checks++
			if ok {
				state.successes++
			}
			state.lastCheck = time.Now()
		}

		if state.checks < totalChecks {
			return Running, nil
		}

		ratio := float64(state.successes) / float64(state.checks)
		state.reset()
		if ratio >= requiredSuccessRatio {
			return Success, nil
		}
		return Failure, nil
	}
	n := NewNode(name, tick, nil)
	n.setResetHook(func() { state.reset() })
	return n
}

type timedConditionState struct {
	checks, successes int
	lastCheck          time.Time
}

func (s *timedConditionState) reset() {
	s.checks, s.successes = 0, 0
	s.lastCheck = time.Time{}
}

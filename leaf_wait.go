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

// Wait reports Running until duration (plus up to ±variance, resampled
// once per cycle) has elapsed since the first tick of the cycle, then
// reports Success.
func Wait(name string, duration, variance time.Duration, source *rand.Rand) *Node {
	if source == nil {
		source = rand.New(rand.NewSource(1))
	}
	state := &waitState{}
	tick := func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		if state.target == 0 {
			d := duration
			if variance > 0 {
				offset := time.Duration(source.Int63n(int64(2*variance+1))) - variance
				d += offset
				if d < 0 {
					d = 0
				}
			}
			state.target = d
			state.start = time.Now()
		}
		if time.Since(state.start) < state.target {
			return Running, nil
		}
		state.target = 0
		return Success, nil
	}
	n := NewNode(name, tick, nil)
	n.setResetHook(func() { state.target = 0 })
	return n
}

type waitState struct {
	start  time.Time
	target time.Duration
}

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
)

// RandomSelector behaves like Selector but shuffles the child visitation
// order on every tick where no child is already Running, following the
// teacher's shuffle.go pattern of drawing a fresh permutation from a
// caller-supplied rand.Source, falling back to the global math/rand source
// when none is given.
func RandomSelector(name string, source rand.Source, children ...*Node) *Node {
	if source == nil {
		source = defaultRandomSource{}
	}
	rng := rand.New(source)
	state := &randomState{}
	tick := func(ctx context.Context, children []*Node) (NodeStatus, error) {
		n := len(children)
		if n == 0 {
			return Failure, nil
		}
		if state.order == nil {
			state.order = rng.Perm(n)
		}
		for state.cursor < len(state.order) {
			idx := state.order[state.cursor]
			status, err := children[idx].Tick(ctx)
			if err != nil || status == Error {
				state.order = nil
				state.cursor = 0
				return Error, err
			}
			switch status {
			case Running:
				return Running, nil
			case Success:
				state.order = nil
				state.cursor = 0
				return Success, nil
			default: // Failure, Skipped
				state.cursor++
			}
		}
		state.order = nil
		state.cursor = 0
		return Failure, nil
	}
	n2 := NewNode(name, tick, children)
	n2.setResetHook(func() { state.order = nil; state.cursor = 0 })
	return n2
}

type randomState struct {
	order  []int
	cursor int
}

// defaultRandomSource delegates to the global math/rand source, matching
// the teacher's shuffle.go defaultSource fallback.
type defaultRandomSource struct{}

func (defaultRandomSource) Int63() int64 { return rand.Int63() }
func (defaultRandomSource) Seed(int64)   {}

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
)

// BlackboardSet writes value (or the result of valueFn, if non-nil) to key
// in namespace on every tick, reporting Success.
func BlackboardSet(name, key, namespace, clientID string, value any, valueFn func(ctx context.Context) any) *Node {
	n := NewNode(name, nil, nil)
	n.tick = func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		bb := n.Blackboard()
		if bb == nil {
			return Error, fmt.Errorf("behaviortree: blackboard_set %q has no blackboard", n.Path())
		}
		v := value
		if valueFn != nil {
			v = valueFn(ctx)
		}
		bb.Set(key, v, namespace, clientID)
		return Success, nil
	}
	return n
}

// BlackboardDelete removes key from namespace on every tick, always
// reporting Success.
func BlackboardDelete(name, key, namespace string) *Node {
	n := NewNode(name, nil, nil)
	n.tick = func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		bb := n.Blackboard()
		if bb == nil {
			return Error, fmt.Errorf("behaviortree: blackboard_delete %q has no blackboard", n.Path())
		}
		bb.Unset(key, namespace)
		return Success, nil
	}
	return n
}

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

// RetryUntilSuccess re-invokes fn on Failure with no attempt cap, sleeping
// delay between tries, until fn reports Success or the context is
// cancelled. This leaf has no counterpart in spec.md's Retry decorator
// (which is bounded); it is carried over from the original implementation's
// RetryUntilSuccessNode for workloads that must not give up.
func RetryUntilSuccess(name string, fn ActionFunc, delay time.Duration) *Node {
	tick := func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		result, _ := safeAction(ctx, fn)
		status := actionResultToStatus(result)
		switch status {
		case Success:
			return Success, nil
		case Running:
			return Running, nil
		default:
			if delay > 0 {
				select {
				case <-ctx.Done():
					return Error, ctx.Err()
				case <-time.After(delay):
				}
			}
			return Running, nil
		}
	}
	return NewNode(name, tick, nil)
}

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

import "time"

// NodeMetadata tracks lifetime statistics for a single node, updated after
// every tick regardless of the status it produced.
type NodeMetadata struct {
	CreatedAt           time.Time
	LastTickTime        time.Time
	TotalTicks          uint64
	SuccessCount        uint64
	FailureCount        uint64
	RunningCount        uint64
	SkippedCount        uint64
	ErrorCount          uint64
	AverageTickDuration time.Duration
	LastStatus          NodeStatus
}

// updateTickStats folds a single tick's outcome into the running averages,
// using the same incremental-mean formula as the Python original.
func (m *NodeMetadata) updateTickStats(duration time.Duration, status NodeStatus) {
	m.LastTickTime = time.Now()
	m.TotalTicks++

	switch status {
	case Success:
		m.SuccessCount++
	case Failure:
		m.FailureCount++
	case Running:
		m.RunningCount++
	case Skipped:
		m.SkippedCount++
	case Error:
		m.ErrorCount++
	}

	prevTotal := time.Duration(m.TotalTicks - 1)
	m.AverageTickDuration = (m.AverageTickDuration*prevTotal + duration) / time.Duration(m.TotalTicks)
	m.LastStatus = status
}

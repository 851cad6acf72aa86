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

// NodeEvent is the closed set of lifecycle events a Node may emit to its
// registered handlers.
type NodeEvent int

const (
	// Initialized fires once a node has been attached to a blackboard.
	Initialized NodeEvent = iota
	// Entering fires immediately before a node's tick logic runs.
	Entering
	// Exiting fires after a node's tick logic has run and its metadata has
	// been updated, regardless of outcome.
	Exiting
	// Setup fires the first time a node is set up, before its first tick.
	Setup
	// Shutdown fires once when a node is torn down.
	Shutdown
	// StatusChanged fires when a tick produces a status different from the
	// node's previous status.
	StatusChanged
	// ErrorEvent fires when a tick's status resolves to Error.
	ErrorEvent
)

// String implements fmt.Stringer.
func (e NodeEvent) String() string {
	switch e {
	case Initialized:
		return "initialized"
	case Entering:
		return "entering"
	case Exiting:
		return "exiting"
	case Setup:
		return "setup"
	case Shutdown:
		return "shutdown"
	case StatusChanged:
		return "status_changed"
	case ErrorEvent:
		return "error"
	default:
		return "unknown_event"
	}
}

// EventHandler receives node lifecycle events. Handlers must not block or
// panic; the tick contract logs and swallows any panic/error a handler
// raises rather than letting it escape Tick.
type EventHandler func(n *Node, event NodeEvent)

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

// Package behaviortree provides a hierarchical, tickable behavior tree
// engine for coordinating the actions of an autonomous agent.
//
// A tree is built from Node values: composites (Sequence, Selector,
// Parallel, ...) combine the status of their children, decorators wrap a
// single child and reshape its status, and leaves (Action, Condition, ...)
// invoke user-supplied callbacks. Every node shares a single Blackboard, a
// namespaced concurrent-safe key/value store. A Manager owns the root node,
// ticks it at a fixed rate, and exposes snapshot/restore and subtree
// registration.
package behaviortree

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
	"log/slog"
)

// DebugLog emits a structured log line at level via logger (or
// slog.Default() if nil) on every tick, including any extra key/value
// pairs, and reports Success.
func DebugLog(name, message string, level slog.Level, logger *slog.Logger, extra ...any) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	tick := func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		logger.Log(ctx, level, message, extra...)
		return Success, nil
	}
	return NewNode(name, tick, nil)
}

// Event is a named payload emitted by an EventEmit leaf.
type Event struct {
	Name    string
	Payload any
}

// EventSink receives events emitted by EventEmit leaves.
type EventSink func(Event)

// EventEmit publishes an Event{eventName, payload} (or the result of
// payloadFn, if non-nil) to sink on every tick, reporting Success.
func EventEmit(name, eventName string, payload any, payloadFn func(ctx context.Context) any, sink EventSink) *Node {
	tick := func(ctx context.Context, _ []*Node) (NodeStatus, error) {
		p := payload
		if payloadFn != nil {
			p = payloadFn(ctx)
		}
		if sink != nil {
			sink(Event{Name: eventName, Payload: p})
		}
		return Success, nil
	}
	return NewNode(name, tick, nil)
}

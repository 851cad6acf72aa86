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
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// TickFunc is the subclass-specific tick logic for a Node, invoked with the
// node's children (nil for leaves). It is the same closure shape the
// teacher's Tick type uses, generalized to carry a context.
type TickFunc func(ctx context.Context, children []*Node) (NodeStatus, error)

// Precondition and Postcondition gate or validate a node's tick. A false
// return or a non-nil error both count as "condition failed".
type Precondition func() (bool, error)
type Postcondition func() (bool, error)

// Node is a single entity in a behavior tree: composites and decorators
// carry children, leaves do not. Node owns its children exclusively; the
// parent link is a non-owning back-reference.
type Node struct {
	name       string
	properties map[string]any
	status     NodeStatus
	parent     *Node
	blackboard *Blackboard
	children   []*Node

	tick           TickFunc
	preconditions  []Precondition
	postconditions []Postcondition
	eventHandlers  map[NodeEvent][]EventHandler

	metadata NodeMetadata

	initialized   bool
	setupDone     bool
	tickStart     time.Time
	resetInternal func()
	requestCancel *int32

	logger *slog.Logger
}

// NewNode constructs a leaf or composite node named name with the given
// tick logic and children (nil/empty for a leaf). The returned node starts
// detached (status Invalid) until Initialize is called, directly or via a
// parent's AddChild.
func NewNode(name string, tick TickFunc, children []*Node) *Node {
	n := &Node{
		name:          name,
		properties:    make(map[string]any),
		status:        Invalid,
		children:      children,
		tick:          tick,
		eventHandlers: make(map[NodeEvent][]EventHandler),
		metadata:      NodeMetadata{CreatedAt: time.Now(), LastStatus: Invalid},
		logger:        slog.Default(),
	}
	for _, c := range children {
		if c != nil {
			c.parent = n
		}
	}
	return n
}

// Name returns the node's own (non-qualified) name.
func (n *Node) Name() string { return n.name }

// Path returns the node's path, derived as parent-path + "/" + name.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.name
	}
	return n.parent.Path() + "/" + n.name
}

// Status returns the node's last-observed status.
func (n *Node) Status() NodeStatus { return n.status }

// Parent returns the node's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children (nil for leaves). The returned slice
// must not be mutated by callers.
func (n *Node) Children() []*Node { return n.children }

// Blackboard returns the shared blackboard the node was initialized with,
// or nil if the node has not been initialized.
func (n *Node) Blackboard() *Blackboard { return n.blackboard }

// Metadata returns a copy of the node's running tick statistics.
func (n *Node) Metadata() NodeMetadata { return n.metadata }

// Properties returns the node's free-form configuration map.
func (n *Node) Properties() map[string]any { return n.properties }

// SetProperties replaces the node's configuration map.
func (n *Node) SetProperties(props map[string]any) {
	if props == nil {
		props = make(map[string]any)
	}
	n.properties = props
}

// WithPreconditions appends preconditions, evaluated in order before every
// tick. Returns the receiver for chaining.
func (n *Node) WithPreconditions(p ...Precondition) *Node {
	n.preconditions = append(n.preconditions, p...)
	return n
}

// WithPostconditions appends postconditions, evaluated after a terminal
// (Success/Failure) tick outcome. Returns the receiver for chaining.
func (n *Node) WithPostconditions(p ...Postcondition) *Node {
	n.postconditions = append(n.postconditions, p...)
	return n
}

// AddEventHandler registers handler for event, invoked in insertion order.
func (n *Node) AddEventHandler(event NodeEvent, handler EventHandler) {
	n.eventHandlers[event] = append(n.eventHandlers[event], handler)
}

// ClearEventHandlers removes every handler registered for event. Go funcs
// are not comparable, so there is no way to remove a single handler.
func (n *Node) ClearEventHandlers(event NodeEvent) {
	delete(n.eventHandlers, event)
}

// emitEvent invokes every handler registered for event, in insertion order.
// Exceptions (panics) in one handler are logged and do not prevent later
// ones from running, and never escape to the tick contract.
func (n *Node) emitEvent(event NodeEvent) {
	for _, h := range n.eventHandlers[event] {
		n.safeInvokeHandler(h, event)
	}
}

func (n *Node) safeInvokeHandler(h EventHandler, event NodeEvent) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("panic in event handler", "node", n.Path(), "event", event.String(), "panic", r)
		}
	}()
	h(n, event)
}

// Initialize attaches the node (and, recursively, its children) to bb. A
// node must be initialized before it can be ticked.
func (n *Node) Initialize(bb *Blackboard) {
	n.blackboard = bb
	n.initialized = true
	n.emitEvent(Initialized)
	for _, c := range n.children {
		if c != nil {
			c.Initialize(bb)
		}
	}
}

// AddChild attaches child as the node's newest child, taking ownership of
// it. If the node is already initialized, child is initialized immediately
// with the same blackboard.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	child.parent = n
	n.children = append(n.children, child)
	if n.blackboard != nil {
		child.Initialize(n.blackboard)
	}
}

// Setup runs once, idempotently, before the node's first tick, emitting
// Setup. Parent nodes recurse into their children.
func (n *Node) Setup(ctx context.Context) error {
	if !n.setupDone {
		n.setupDone = true
		n.emitEvent(Setup)
	}
	for _, c := range n.children {
		if c != nil {
			if err := c.Setup(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Shutdown tears the node down, recursing into children first (mirroring
// the teardown order of the Python original's ParentNode.shutdown), then
// emitting Shutdown on the receiver. Idempotent.
func (n *Node) Shutdown(ctx context.Context) error {
	for _, c := range n.children {
		if c != nil {
			if err := c.Shutdown(ctx); err != nil {
				return err
			}
		}
	}
	if n.setupDone {
		n.setupDone = false
		n.emitEvent(Shutdown)
	}
	return nil
}

// Reset returns the node (and, recursively, its children) to an unstarted
// state: status Invalid, with any internal counters cleared via
// resetInternal hooks registered by composites/decorators.
func (n *Node) Reset() {
	n.status = Invalid
	if n.resetInternal != nil {
		n.resetInternal()
	}
	for _, c := range n.children {
		if c != nil {
			c.Reset()
		}
	}
}

// resetInternal, when set by a composite/decorator constructor, clears
// node-kind-specific state (e.g. current_child) on Reset.
func (n *Node) setResetHook(fn func()) { n.resetInternal = fn }

// ErrNilNode is returned by Tick when called on a nil *Node.
var ErrNilNode = errors.New("behaviortree: cannot tick a nil node")

// ErrNilTick is returned by Tick when a node has no tick logic attached.
var ErrNilTick = errors.New("behaviortree: cannot tick a node with nil tick logic")

// Tick implements the tick contract described in §4.1:
//  1. uninitialized -> Error
//  2. lazily run Setup
//  3. evaluate preconditions; any false/erroring one -> Skipped, no Entering
//  4. emit Entering
//  5. invoke the subclass tick logic
//  6. on a terminal outcome, evaluate postconditions; any failure forces Failure
//  7. an unhandled panic/error from the tick logic yields Error and emits ErrorEvent
//  8. always update metadata, emit Exiting, and clear the in-flight tick-start marker
func (n *Node) Tick(ctx context.Context) (status NodeStatus, err error) {
	if n == nil {
		return Error, ErrNilNode
	}
	if !n.initialized {
		n.logger.Error("tick on uninitialized node", "node", n.name)
		return Error, nil
	}
	if n.tick == nil {
		return Error, ErrNilTick
	}
	if !n.setupDone {
		if serr := n.Setup(ctx); serr != nil {
			return Error, serr
		}
	}

	ok, perr := n.checkPreconditions()
	if !ok || perr != nil {
		n.metadata.updateTickStats(0, Skipped)
		n.status = Skipped
		return Skipped, nil
	}

	n.tickStart = time.Now()
	n.emitEvent(Entering)

	prevStatus := n.status
	status, err = n.safeTick(ctx)

	if err != nil {
		status = Error
	} else if status.Terminal() {
		postOK, postErr := n.checkPostconditions()
		if !postOK || postErr != nil {
			status = Failure
		}
	}

	if status == Error {
		n.emitEvent(ErrorEvent)
	}

	duration := time.Since(n.tickStart)
	n.metadata.updateTickStats(duration, status)
	n.status = status
	n.tickStart = time.Time{}

	if status != prevStatus {
		n.emitEvent(StatusChanged)
	}
	n.emitEvent(Exiting)

	return status, err
}

// safeTick invokes the node's tick logic, converting a panic into an Error
// status/error pair so it can never escape Tick.
func (n *Node) safeTick(ctx context.Context) (status NodeStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = Error
			err = fmt.Errorf("behaviortree: panic in node %q: %v", n.Path(), r)
		}
	}()
	return n.tick(ctx, n.children)
}

func (n *Node) checkPreconditions() (bool, error) {
	for _, p := range n.preconditions {
		ok, err := safePredicate(p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (n *Node) checkPostconditions() (bool, error) {
	for _, p := range n.postconditions {
		ok, err := safePostcondition(p)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func safePredicate(p Precondition) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("behaviortree: panic in precondition: %v", r)
		}
	}()
	return p()
}

func safePostcondition(p Postcondition) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("behaviortree: panic in postcondition: %v", r)
		}
	}()
	return p()
}


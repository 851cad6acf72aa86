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
	"testing"
)

func tickingLeaf(status NodeStatus, err error) *Node {
	return NewNode("leaf", func(ctx context.Context, children []*Node) (NodeStatus, error) {
		return status, err
	}, nil)
}

func TestNode_TickUninitialized(t *testing.T) {
	n := tickingLeaf(Success, nil)
	status, err := n.Tick(context.Background())
	if status != Error || err != nil {
		t.Errorf("expected Error/nil for uninitialized tick, got %s/%v", status, err)
	}
}

func TestNode_TickSuccess(t *testing.T) {
	n := tickingLeaf(Success, nil)
	n.Initialize(NewBlackboard())
	status, err := n.Tick(context.Background())
	if status != Success || err != nil {
		t.Errorf("got %s/%v, want Success/nil", status, err)
	}
	if n.Metadata().TotalTicks != 1 || n.Metadata().SuccessCount != 1 {
		t.Errorf("unexpected metadata: %+v", n.Metadata())
	}
}

func TestNode_TickError(t *testing.T) {
	wantErr := errors.New("boom")
	n := tickingLeaf(Success, wantErr)
	n.Initialize(NewBlackboard())
	status, err := n.Tick(context.Background())
	if status != Error || !errors.Is(err, wantErr) {
		t.Errorf("got %s/%v, want Error/%v", status, err, wantErr)
	}
}

func TestNode_TickPanicBecomesError(t *testing.T) {
	n := NewNode("panics", func(ctx context.Context, children []*Node) (NodeStatus, error) {
		panic("oh no")
	}, nil)
	n.Initialize(NewBlackboard())
	status, err := n.Tick(context.Background())
	if status != Error || err == nil {
		t.Errorf("got %s/%v, want Error/non-nil", status, err)
	}
}

func TestNode_PreconditionSkips(t *testing.T) {
	var ticked bool
	n := NewNode("cond", func(ctx context.Context, children []*Node) (NodeStatus, error) {
		ticked = true
		return Success, nil
	}, nil)
	n.WithPreconditions(func() (bool, error) { return false, nil })
	n.Initialize(NewBlackboard())
	status, err := n.Tick(context.Background())
	if status != Skipped || err != nil {
		t.Errorf("got %s/%v, want Skipped/nil", status, err)
	}
	if ticked {
		t.Error("tick logic should not run when a precondition fails")
	}
	if meta := n.Metadata(); meta.TotalTicks != 1 || meta.SkippedCount != 1 {
		t.Errorf("metadata = %+v, want TotalTicks=1/SkippedCount=1", meta)
	}
}

func TestNode_PostconditionForcesFailure(t *testing.T) {
	n := tickingLeaf(Success, nil)
	n.WithPostconditions(func() (bool, error) { return false, nil })
	n.Initialize(NewBlackboard())
	status, _ := n.Tick(context.Background())
	if status != Failure {
		t.Errorf("got %s, want Failure", status)
	}
}

func TestNode_EventsFireInOrder(t *testing.T) {
	var order []NodeEvent
	n := tickingLeaf(Success, nil)
	for _, ev := range []NodeEvent{Initialized, Entering, Exiting, StatusChanged, Setup} {
		ev := ev
		n.AddEventHandler(ev, func(n *Node, e NodeEvent) { order = append(order, e) })
	}
	n.Initialize(NewBlackboard())
	n.Tick(context.Background())

	if len(order) == 0 || order[0] != Initialized {
		t.Errorf("expected Initialized first, got %v", order)
	}
	foundEntering, foundExiting := false, false
	for _, e := range order {
		if e == Entering {
			foundEntering = true
		}
		if e == Exiting {
			foundExiting = true
		}
	}
	if !foundEntering || !foundExiting {
		t.Errorf("expected Entering and Exiting both present, got %v", order)
	}
}

func TestNode_Path(t *testing.T) {
	child := tickingLeaf(Success, nil)
	root := NewNode("root", nil, []*Node{child})
	if got, want := child.Path(), "root/leaf"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestNode_AddChildInitializesIfParentAlreadyInitialized(t *testing.T) {
	root := NewNode("root", nil, nil)
	bb := NewBlackboard()
	root.Initialize(bb)

	child := tickingLeaf(Success, nil)
	root.AddChild(child)
	if child.Blackboard() != bb {
		t.Error("child should have been initialized with the parent's blackboard")
	}
}

func TestNode_Reset(t *testing.T) {
	n := tickingLeaf(Success, nil)
	n.Initialize(NewBlackboard())
	n.Tick(context.Background())
	if n.Status() != Success {
		t.Fatal("precondition: expected Success before Reset")
	}
	n.Reset()
	if n.Status() != Invalid {
		t.Errorf("Status() after Reset = %s, want Invalid", n.Status())
	}
}

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
	"time"
)

func TestAction_RetriesOnErrorThenSucceeds(t *testing.T) {
	calls := 0
	a := Action("a", func(ctx context.Context) (ActionResult, error) {
		calls++
		if calls < 3 {
			return ActionError, errors.New("transient")
		}
		return ActionSuccess, nil
	}, ActionOptions{RetryCount: 2})
	if got := tick(t, a); got != Success {
		t.Errorf("got %s, want Success", got)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestAction_IgnoreErrorsDemotesToSuccess(t *testing.T) {
	a := Action("a", func(ctx context.Context) (ActionResult, error) {
		return ActionError, errors.New("boom")
	}, ActionOptions{IgnoreErrors: true})
	if got := tick(t, a); got != Success {
		t.Errorf("got %s, want Success", got)
	}
}

func TestAction_ErrorWithoutIgnoreBecomesFailure(t *testing.T) {
	stats := &ActionStats{}
	a := Action("a", func(ctx context.Context) (ActionResult, error) {
		return ActionError, errors.New("boom")
	}, ActionOptions{Stats: stats})
	if got := tick(t, a); got != Failure {
		t.Errorf("got %s, want Failure", got)
	}
	if stats.Snapshot().ErrorRuns == 0 {
		t.Error("expected ErrorRuns to be incremented")
	}
}

func TestAction_RequestCancel(t *testing.T) {
	var called bool
	a := Action("a", func(ctx context.Context) (ActionResult, error) {
		called = true
		return ActionSuccess, nil
	}, ActionOptions{})
	a.RequestCancel()
	if got := tick(t, a); got != Failure {
		t.Errorf("got %s, want Failure", got)
	}
	if called {
		t.Error("callback should not run after RequestCancel")
	}
	// one-shot: the next tick runs normally.
	if got := tick(t, a); got != Success || !called {
		t.Errorf("got %s/called=%v, want Success/true on the tick after cancellation", got, called)
	}
}

func TestCondition_TrueAndFalse(t *testing.T) {
	c := Condition("cond", func(ctx context.Context) (bool, error) { return true, nil })
	if got := tick(t, c); got != Success {
		t.Errorf("got %s, want Success", got)
	}
	c2 := Condition("cond2", func(ctx context.Context) (bool, error) { return false, nil })
	if got := tick(t, c2); got != Failure {
		t.Errorf("got %s, want Failure", got)
	}
}

func TestCondition_ErrorDemotesToFailureAndCountsErrorChecks(t *testing.T) {
	stats := &ConditionStats{}
	c := Condition("cond", func(ctx context.Context) (bool, error) {
		return false, errors.New("boom")
	}, ConditionOptions{Stats: stats})
	if got := tick(t, c); got != Failure {
		t.Errorf("got %s, want Failure (errors never surface as Error)", got)
	}
	if snap := stats.Snapshot(); snap.ErrorChecks != 1 || snap.TotalChecks != 1 {
		t.Errorf("stats = %+v, want TotalChecks=1/ErrorChecks=1", snap)
	}
}

func TestAction_RunsUnderManagerWorkerPool(t *testing.T) {
	a := Action("a", func(ctx context.Context) (ActionResult, error) {
		return ActionSuccess, nil
	}, ActionOptions{})
	m := NewManager(a, ManagerConfig{MaxWorkers: 2})
	status, err := m.TickTree(context.Background())
	if status != Success || err != nil {
		t.Errorf("got %s/%v, want Success/nil", status, err)
	}
}

func TestCondition_RunsUnderManagerWorkerPool(t *testing.T) {
	c := Condition("c", func(ctx context.Context) (bool, error) { return true, nil })
	m := NewManager(c, ManagerConfig{MaxWorkers: 2})
	status, err := m.TickTree(context.Background())
	if status != Success || err != nil {
		t.Errorf("got %s/%v, want Success/nil", status, err)
	}
}

func TestBlackboardCompare_ExtendedOperators(t *testing.T) {
	bb := NewBlackboard()
	bb.Set("tags", []string{"a", "b"}, DefaultNamespace, "t")

	c := BlackboardCompare("c", "tags", DefaultNamespace, CondContains, "a")
	c.Initialize(bb)
	if got, _ := c.Tick(context.Background()); got != Success {
		t.Errorf("contains: got %s, want Success", got)
	}

	bb.Set("name", "hello world", DefaultNamespace, "t")
	c2 := BlackboardCompare("c2", "name", DefaultNamespace, CondStartsWith, "hello")
	c2.Initialize(bb)
	if got, _ := c2.Tick(context.Background()); got != Success {
		t.Errorf("startswith: got %s, want Success", got)
	}
}

func TestBlackboardCompare_MissingKeyDemotesToFailure(t *testing.T) {
	stats := &ConditionStats{}
	bb := NewBlackboard()
	c := BlackboardCompare("c", "missing", DefaultNamespace, CondEqual, "x", ConditionOptions{Stats: stats})
	c.Initialize(bb)
	got, err := c.Tick(context.Background())
	if got != Failure || err != nil {
		t.Errorf("got %s/%v, want Failure/nil", got, err)
	}
	if snap := stats.Snapshot(); snap.ErrorChecks != 1 {
		t.Errorf("stats = %+v, want ErrorChecks=1", snap)
	}
}

func TestWait_ReportsRunningUntilDurationElapses(t *testing.T) {
	w := Wait("w", 20*time.Millisecond, 0, nil)
	w.Initialize(NewBlackboard())
	status, _ := w.Tick(context.Background())
	if status != Running {
		t.Fatalf("immediate tick: got %s, want Running", status)
	}
	time.Sleep(25 * time.Millisecond)
	status, _ = w.Tick(context.Background())
	if status != Success {
		t.Errorf("after duration elapsed: got %s, want Success", status)
	}
}

func TestThrottle_BlocksWithinMinInterval(t *testing.T) {
	calls := 0
	th := Throttle("th", func(ctx context.Context) (ActionResult, error) {
		calls++
		return ActionSuccess, nil
	}, 50*time.Millisecond, 0, 0)
	th.Initialize(NewBlackboard())
	status, _ := th.Tick(context.Background())
	if status != Success || calls != 1 {
		t.Fatalf("first tick: status=%s calls=%d", status, calls)
	}
	status, _ = th.Tick(context.Background())
	if status != Failure || calls != 1 {
		t.Errorf("second tick within interval: status=%s calls=%d, want Failure/1", status, calls)
	}
}

func TestBlackboardSetAndDelete(t *testing.T) {
	bb := NewBlackboard()
	set := BlackboardSet("set", "k", DefaultNamespace, "c1", "v", nil)
	set.Initialize(bb)
	set.Tick(context.Background())
	if v, _ := bb.Get("k", DefaultNamespace); v != "v" {
		t.Errorf("Get() = %v, want v", v)
	}

	del := BlackboardDelete("del", "k", DefaultNamespace)
	del.Initialize(bb)
	del.Tick(context.Background())
	if bb.Exists("k", DefaultNamespace) {
		t.Error("expected key to be deleted")
	}
}

func TestTimedCondition_ClampsToAtLeastOneCheck(t *testing.T) {
	tc := TimedCondition("tc", func(ctx context.Context) (bool, error) { return true, nil }, time.Second, 0, 1.0)
	tc.Initialize(NewBlackboard())
	status, _ := tc.Tick(context.Background())
	if status != Success {
		t.Errorf("got %s, want Success after a single clamped check", status)
	}
}

func TestRetryUntilSuccess_KeepsGoing(t *testing.T) {
	calls := 0
	r := RetryUntilSuccess("r", func(ctx context.Context) (ActionResult, error) {
		calls++
		if calls < 3 {
			return ActionFailure, nil
		}
		return ActionSuccess, nil
	}, time.Millisecond)
	r.Initialize(NewBlackboard())
	var status NodeStatus
	for i := 0; i < 10 && status != Success; i++ {
		status, _ = r.Tick(context.Background())
	}
	if status != Success || calls != 3 {
		t.Errorf("status=%s calls=%d, want Success/3", status, calls)
	}
}

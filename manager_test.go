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
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_TickTree(t *testing.T) {
	root := statusLeaf("root", Success)
	m := NewManager(root, ManagerConfig{})
	status, err := m.TickTree(context.Background())
	if status != Success || err != nil {
		t.Errorf("got %s/%v, want Success/nil", status, err)
	}
}

func TestManager_PauseResume(t *testing.T) {
	calls := 0
	root := NewNode("root", func(ctx context.Context, children []*Node) (NodeStatus, error) {
		calls++
		return Success, nil
	}, nil)
	m := NewManager(root, ManagerConfig{})
	m.TickTree(context.Background())
	m.Pause()
	m.TickTree(context.Background())
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (paused tick should not invoke tick logic)", calls)
	}
	m.Resume()
	m.TickTree(context.Background())
	if calls != 2 {
		t.Errorf("calls = %d, want 2 after Resume", calls)
	}
}

func TestManager_StopReturnsErrManagerStopped(t *testing.T) {
	root := statusLeaf("root", Success)
	m := NewManager(root, ManagerConfig{})
	m.Stop()
	_, err := m.TickTree(context.Background())
	if !errors.Is(err, ErrManagerStopped) {
		t.Errorf("got %v, want ErrManagerStopped", err)
	}
}

func TestManager_RunStopsOnContextCancel(t *testing.T) {
	root := statusLeaf("root", Success)
	m := NewManager(root, ManagerConfig{TickRate: 1000})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want nil or context.DeadlineExceeded", err)
	}
	if m.GetStats().TotalTicks == 0 {
		t.Error("expected at least one tick during Run")
	}
}

func TestManager_RegisterAndGetSubtree(t *testing.T) {
	root := statusLeaf("root", Success)
	m := NewManager(root, ManagerConfig{})
	sub := statusLeaf("sub", Success)
	m.RegisterSubtree("sub", sub)
	if got := m.GetSubtree("sub"); got != sub {
		t.Error("GetSubtree did not return the registered subtree")
	}
	if got := m.GetSubtree("missing"); got != nil {
		t.Error("GetSubtree(missing) should return nil")
	}
}

func TestManager_MaxWorkersBoundsOffloadedConcurrency(t *testing.T) {
	root := statusLeaf("root", Success)
	m := NewManager(root, ManagerConfig{MaxWorkers: 1})
	ctx := withWorkerPool(context.Background(), m.pool)

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runOffloaded(ctx, func() {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					max := atomic.LoadInt32(&maxInFlight)
					if n <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxInFlight); got > 1 {
		t.Errorf("maxInFlight = %d, want <= 1 with MaxWorkers=1", got)
	}
}

func TestManager_SnapshotRoundTrip(t *testing.T) {
	root := statusLeaf("root", Success)
	m := NewManager(root, ManagerConfig{})
	m.TickTree(context.Background())
	m.Blackboard().Set("k", "v", DefaultNamespace, "c1")

	snap := m.TakeSnapshot()

	m.Blackboard().Set("k", "changed", DefaultNamespace, "c1")
	m.RestoreSnapshot(snap)

	v, err := m.Blackboard().Get("k", DefaultNamespace)
	if err != nil || v != "v" {
		t.Errorf("Get(k) after restore = %v/%v, want v/nil", v, err)
	}
}

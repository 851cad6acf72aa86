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
	"encoding/json"
	"os"
	"time"
)

// TreeSnapshot is a point-in-time capture of a tree's node statuses and
// blackboard contents, sufficient to restore execution state, following
// tree_manager.TreeSnapshot of the Python original.
type TreeSnapshot struct {
	TakenAt        time.Time           `json:"taken_at"`
	RootPath       string              `json:"root_path"`
	NodeStatuses   map[string]NodeStatus `json:"node_statuses"`
	BlackboardState BlackboardState    `json:"blackboard_state"`
}

// TakeSnapshot captures the manager's current node statuses (keyed by
// Node.Path) and the full blackboard state.
func (m *Manager) TakeSnapshot() TreeSnapshot {
	statuses := make(map[string]NodeStatus)
	collectStatuses(m.root, statuses)
	return TreeSnapshot{
		TakenAt:         time.Now(),
		RootPath:        m.root.Path(),
		NodeStatuses:    statuses,
		BlackboardState: m.bb.SaveState(),
	}
}

func collectStatuses(n *Node, out map[string]NodeStatus) {
	if n == nil {
		return
	}
	out[n.Path()] = n.Status()
	for _, c := range n.Children() {
		collectStatuses(c, out)
	}
}

// RestoreSnapshot replaces the manager's blackboard contents with those in
// snap and restores each node's last-observed status where the node's path
// still exists in the current tree. It does not replay ticks.
func (m *Manager) RestoreSnapshot(snap TreeSnapshot) {
	m.bb.LoadState(snap.BlackboardState)
	restoreStatuses(m.root, snap.NodeStatuses)
}

func restoreStatuses(n *Node, statuses map[string]NodeStatus) {
	if n == nil {
		return
	}
	if status, ok := statuses[n.Path()]; ok {
		n.status = status
	}
	for _, c := range n.Children() {
		restoreStatuses(c, statuses)
	}
}

// SaveToFile writes a TreeSnapshot of the manager's current state to path
// as JSON.
func (m *Manager) SaveToFile(path string) error {
	snap := m.TakeSnapshot()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFromFile reads a TreeSnapshot previously written by SaveToFile and
// restores it onto the manager.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap TreeSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	m.RestoreSnapshot(snap)
	return nil
}

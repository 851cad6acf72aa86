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

import "testing"

func TestNodeStatus_String(t *testing.T) {
	cases := map[NodeStatus]string{
		Invalid: "invalid",
		Success: "success",
		Failure: "failure",
		Running: "running",
		Skipped: "skipped",
		Error:   "error",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", status, got, want)
		}
	}
	if got := NodeStatus(99).String(); got == "" {
		t.Error("expected non-empty string for unknown status")
	}
}

func TestNodeStatus_Terminal(t *testing.T) {
	for _, s := range []NodeStatus{Success, Failure} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []NodeStatus{Invalid, Running, Skipped, Error} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

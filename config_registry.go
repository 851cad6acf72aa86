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
	"fmt"
	"time"
)

// DefaultRegistry returns a Registry with builders for every composite and
// decorator type this package ships, keyed by the lowercase, snake_case
// type names a NodeConfig.Type would carry. Leaf types are intentionally
// left unregistered: they wrap caller-supplied Go closures (ActionFunc,
// PredicateFunc) that a declarative config file cannot name, so
// applications register their own leaf builders alongside this set.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register("sequence", func(cfg NodeConfig, children []*Node) (*Node, error) {
		return Sequence(cfg.Name, memoryPolicyProp(cfg, FreshMemory), children...), nil
	})
	r.Register("selector", func(cfg NodeConfig, children []*Node) (*Node, error) {
		return Selector(cfg.Name, memoryPolicyProp(cfg, FreshMemory), children...), nil
	})
	r.Register("reactive_sequence", func(cfg NodeConfig, children []*Node) (*Node, error) {
		return ReactiveSequence(cfg.Name, children...), nil
	})
	r.Register("reactive_selector", func(cfg NodeConfig, children []*Node) (*Node, error) {
		return ReactiveSelector(cfg.Name, children...), nil
	})
	r.Register("random_selector", func(cfg NodeConfig, children []*Node) (*Node, error) {
		return RandomSelector(cfg.Name, nil, children...), nil
	})
	r.Register("parallel", func(cfg NodeConfig, children []*Node) (*Node, error) {
		policy, err := parallelPolicyProp(cfg)
		if err != nil {
			return nil, err
		}
		opts := ParallelOptions{
			Policy:           policy,
			SuccessThreshold: intProp(cfg, "success_threshold", 0),
			FailureThreshold: intProp(cfg, "failure_threshold", 0),
			Synchronized:     boolProp(cfg, "synchronized", false),
		}
		return Parallel(cfg.Name, opts, children...), nil
	})

	r.Register("inverter", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		return Inverter(cfg.Name, child), nil
	}))
	r.Register("force_success", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		return ForceSuccess(cfg.Name, child), nil
	}))
	r.Register("force_failure", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		return ForceFailure(cfg.Name, child), nil
	}))
	r.Register("repeat", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		opts := RepeatOptions{
			NumCycles:        intProp(cfg, "num_cycles", -1),
			SuccessThreshold: intProp(cfg, "success_threshold", 0),
			FailureThreshold: intProp(cfg, "failure_threshold", 0),
			ResetAfterCycle:  boolProp(cfg, "reset_after", false),
		}
		return Repeat(cfg.Name, opts, child), nil
	}))
	r.Register("retry", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		opts := RetryOptions{
			MaxAttempts:        intProp(cfg, "max_attempts", 3),
			Delay:              durationProp(cfg, "delay", time.Second),
			ExponentialBackoff: boolProp(cfg, "exponential_backoff", false),
			Jitter:             durationProp(cfg, "jitter", 0),
		}
		return Retry(cfg.Name, opts, child), nil
	}))
	r.Register("timeout", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		d := durationProp(cfg, "duration", 10*time.Second)
		onTimeout := Failure
		if stringProp(cfg, "on_timeout", "failure") == "error" {
			onTimeout = Error
		}
		return Timeout(cfg.Name, d, onTimeout, child), nil
	}))
	r.Register("delay", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		pre := durationProp(cfg, "pre_delay", 0)
		post := durationProp(cfg, "post_delay", 0)
		return Delay(cfg.Name, pre, post, child), nil
	}))
	r.Register("cooldown", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		d := durationProp(cfg, "duration", time.Second)
		resetOnFailure := boolProp(cfg, "reset_on_failure", true)
		return Cooldown(cfg.Name, d, resetOnFailure, child), nil
	}))
	r.Register("blackboard_condition", requireOneChild(func(cfg NodeConfig, child *Node) (*Node, error) {
		key := stringProp(cfg, "key", "")
		namespace := stringProp(cfg, "namespace", DefaultNamespace)
		op := CompareOp(stringProp(cfg, "operator", "=="))
		expected := cfg.Properties["value"]
		return BlackboardCondition(cfg.Name, key, namespace, op, expected, child), nil
	}))

	return r
}

func requireOneChild(fn func(cfg NodeConfig, child *Node) (*Node, error)) NodeBuilder {
	return func(cfg NodeConfig, children []*Node) (*Node, error) {
		if len(children) != 1 {
			return nil, fmt.Errorf("node type %q requires exactly one child, got %d", cfg.Type, len(children))
		}
		return fn(cfg, children[0])
	}
}

func memoryPolicyProp(cfg NodeConfig, fallback MemoryPolicy) MemoryPolicy {
	switch stringProp(cfg, "memory_policy", "") {
	case "persistent":
		return PersistentMemory
	case "fresh":
		return FreshMemory
	default:
		return fallback
	}
}

func parallelPolicyProp(cfg NodeConfig) (ParallelPolicy, error) {
	switch stringProp(cfg, "parallel_policy", "require_all") {
	case "require_all":
		return RequireAll, nil
	case "require_one":
		return RequireOne, nil
	case "sequence_star":
		return SequenceStar, nil
	case "selector_star":
		return SelectorStar, nil
	default:
		return 0, fmt.Errorf("unknown parallel_policy %q", cfg.Properties["parallel_policy"])
	}
}

func stringProp(cfg NodeConfig, key, fallback string) string {
	if v, ok := cfg.Properties[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func boolProp(cfg NodeConfig, key string, fallback bool) bool {
	if v, ok := cfg.Properties[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return fallback
}

func intProp(cfg NodeConfig, key string, fallback int) int {
	if v, ok := cfg.Properties[key]; ok {
		if f, ok := toFloat(v); ok {
			return int(f)
		}
	}
	return fallback
}

func durationProp(cfg NodeConfig, key string, fallback time.Duration) time.Duration {
	if v, ok := cfg.Properties[key]; ok {
		if f, ok := toFloat(v); ok {
			return time.Duration(f * float64(time.Second))
		}
	}
	return fallback
}

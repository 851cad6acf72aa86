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
	"reflect"
	"strings"
)

// ConditionOp is the extended operator set ConditionNode supports, a
// superset of CompareOp (adding membership/substring tests), following
// nodes.leaves.ConditionNode.operators in the Python original.
type ConditionOp string

const (
	CondEqual        ConditionOp = "=="
	CondNotEqual     ConditionOp = "!="
	CondGreaterThan  ConditionOp = ">"
	CondLessThan     ConditionOp = "<"
	CondGreaterEqual ConditionOp = ">="
	CondLessEqual    ConditionOp = "<="
	CondIn           ConditionOp = "in"
	CondNotIn        ConditionOp = "not in"
	CondContains     ConditionOp = "contains"
	CondStartsWith   ConditionOp = "startswith"
	CondEndsWith     ConditionOp = "endswith"
)

// compareValues evaluates actual op expected for the CompareOp subset
// shared by BlackboardCondition and ConditionNode.
func compareValues(actual any, op CompareOp, expected any) (bool, error) {
	return evaluateCondition(actual, ConditionOp(op), expected)
}

// evaluateCondition evaluates actual op expected for the full extended
// operator set.
func evaluateCondition(actual any, op ConditionOp, expected any) (bool, error) {
	switch op {
	case CondEqual:
		return reflect.DeepEqual(actual, expected), nil
	case CondNotEqual:
		return !reflect.DeepEqual(actual, expected), nil
	case CondGreaterThan, CondLessThan, CondGreaterEqual, CondLessEqual:
		return compareOrdered(actual, op, expected)
	case CondIn:
		return membership(expected, actual)
	case CondNotIn:
		ok, err := membership(expected, actual)
		return !ok, err
	case CondContains:
		return membership(actual, expected)
	case CondStartsWith:
		as, aok := actual.(string)
		es, eok := expected.(string)
		if !aok || !eok {
			return false, fmt.Errorf("behaviortree: startswith requires strings")
		}
		return strings.HasPrefix(as, es), nil
	case CondEndsWith:
		as, aok := actual.(string)
		es, eok := expected.(string)
		if !aok || !eok {
			return false, fmt.Errorf("behaviortree: endswith requires strings")
		}
		return strings.HasSuffix(as, es), nil
	default:
		return false, fmt.Errorf("behaviortree: unknown condition operator %q", op)
	}
}

func compareOrdered(actual any, op ConditionOp, expected any) (bool, error) {
	af, aok := toFloat(actual)
	ef, eok := toFloat(expected)
	if !aok || !eok {
		as, asok := actual.(string)
		es, esok := expected.(string)
		if asok && esok {
			return compareStrings(as, op, es), nil
		}
		return false, fmt.Errorf("behaviortree: cannot order-compare %T and %T", actual, expected)
	}
	switch op {
	case CondGreaterThan:
		return af > ef, nil
	case CondLessThan:
		return af < ef, nil
	case CondGreaterEqual:
		return af >= ef, nil
	case CondLessEqual:
		return af <= ef, nil
	default:
		return false, fmt.Errorf("behaviortree: unsupported ordering operator %q", op)
	}
}

func compareStrings(a string, op ConditionOp, b string) bool {
	switch op {
	case CondGreaterThan:
		return a > b
	case CondLessThan:
		return a < b
	case CondGreaterEqual:
		return a >= b
	case CondLessEqual:
		return a <= b
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// membership reports whether needle is an element of haystack, supporting
// slices, arrays, strings (substring test), and maps (key test).
func membership(haystack, needle any) (bool, error) {
	if haystack == nil {
		return false, nil
	}
	if hs, ok := haystack.(string); ok {
		ns, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("behaviortree: membership against a string requires a string needle")
		}
		return strings.Contains(hs, ns), nil
	}
	rv := reflect.ValueOf(haystack)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if reflect.DeepEqual(rv.Index(i).Interface(), needle) {
				return true, nil
			}
		}
		return false, nil
	case reflect.Map:
		for _, k := range rv.MapKeys() {
			if reflect.DeepEqual(k.Interface(), needle) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("behaviortree: %T is not a supported membership container", haystack)
	}
}

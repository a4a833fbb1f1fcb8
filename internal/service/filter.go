package service

import (
	"fmt"
	"strings"
)

// maxControllers bounds the per-controller aggregate patterns (C1..C9).
const maxControllers = 9

// aggregateKeys holds every "C<i>_<suffix>" aggregate pattern, built once.
var aggregateKeys = buildAggregateKeys()

func buildAggregateKeys() []string {
	keys := make([]string, 0, maxControllers*len(controllerAggregates))
	for i := 1; i <= maxControllers; i++ {
		for _, suffix := range controllerAggregates {
			keys = append(keys, fmt.Sprintf("C%d_%s", i, suffix))
		}
	}
	return keys
}

// FilterRelevant keeps the discovered variable names that map to something
// we understand: thermostat or system attributes, per-controller aggregate
// sensors, and custom-name entries. Matching is by substring containment:
// raw keys carry per-controller/thermostat prefixes while the mapping
// tables hold suffixes. The function is pure and idempotent.
func FilterRelevant(names []string) []string {
	relevant := make([]string, 0, len(names))
	for _, name := range names {
		if isRelevantVariable(name) {
			relevant = append(relevant, name)
		}
	}
	return relevant
}

func isRelevantVariable(name string) bool {
	for key := range thermostatVarMapping {
		if strings.Contains(name, key) {
			return true
		}
	}
	for key := range systemVarMapping {
		if strings.Contains(name, key) {
			return true
		}
	}
	for _, key := range aggregateKeys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return isCustomNameKey(name)
}

// isCustomNameKey matches the two custom-name shapes the controller uses:
// cust_<id>_name for thermostats and cust_Controller<N>_Name for controllers.
func isCustomNameKey(name string) bool {
	if !strings.HasPrefix(name, "cust_") {
		return false
	}
	return strings.HasSuffix(name, "_name") || strings.HasSuffix(name, "_Name")
}

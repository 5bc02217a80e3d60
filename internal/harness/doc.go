// Package harness runs YAML behaviour scenarios against a Tracker.
//
// A scenario seeds the store, drives the tracker through a list of steps
// and then checks assertions about the resulting state. Each run uses a
// fresh in-memory store, a settable clock and fixed session ids, so the
// trace it produces is deterministic and can be compared against a golden
// file.
//
// Example:
//
//	name: nine-of-ten
//	description: ship stays locked until the last test passes
//	steps:
//	  - action: set_test
//	    id: preferences
//	    passed: true
//	assertions:
//	  - type: passed_count
//	    count: 1
package harness

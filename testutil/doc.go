// Package testutil provides deterministic test data generation shared
// by the filter test suites.
package testutil

//go:build !sqlite

package main

import "fmt"

func newSQLiteStore(_ string) (MetricsStore, error) {
	return nil, fmt.Errorf("sqlite backend unavailable in this build; rebuild with -tags sqlite")
}

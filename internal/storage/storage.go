// Package storage persists the fetch counter and the last response code
// across runs.
package storage

import (
	"fmt"
)

// Port is the persistence surface used by the orchestrator. The two scalars
// are read and written independently; StoreData writes both.
type Port interface {
	// FetchCount returns the stored counter, 0 if nothing was stored.
	FetchCount() (int, error)
	// ResponseCode returns the stored code, "" if nothing was stored.
	ResponseCode() (string, error)
	StoreFetchCount(count int) error
	StoreResponseCode(code string) error
	StoreData(count int, code string) error
}

// Resetter clears everything a store holds.
type Resetter interface {
	Reset() error
}

// Record is the persisted form of the two scalars.
type Record struct {
	FetchCount   int    `json:"fetch_count"`
	ResponseCode string `json:"response_code"`
}

func validateCount(count int) error {
	if count < 0 {
		return fmt.Errorf("fetch count must be non-negative, got %d", count)
	}
	return nil
}

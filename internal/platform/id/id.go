package id

import "time"

// Allocator hands out record identifiers derived from a timestamp.
type Allocator interface {
	Next(at time.Time, taken func(int64) bool) int64
}

// UnixMillis uses the millisecond timestamp and bumps it until it is free.
type UnixMillis struct{}

func (UnixMillis) Next(at time.Time, taken func(int64) bool) int64 {
	next := at.UnixMilli()
	for taken != nil && taken(next) {
		next++
	}
	return next
}

package config

import (
	"io"
	"time"
)

// TimeConfig reads integer values as durations in the named unit.
type TimeConfig interface {
	// GetSecond reads key as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads key as a number of minutes.
	GetMinute(key string) time.Duration
	// GetHour reads key as a number of hours.
	GetHour(key string) time.Duration
}

// Config is the read-only view of runtime configuration.
//
// Missing keys yield the zero value of the requested type; defaults are the
// implementation's concern.
type Config interface {
	io.Closer
	TimeConfig

	GetInt(key string) int
	GetInt32(key string) int32
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetArray reads a list. Both a YAML sequence and a "<a>,<b>,..." string
	// are accepted; blank elements are dropped.
	GetArray(key string) []string
}

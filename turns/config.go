package turns

import (
	"runtime"

	"github.com/rs/zerolog"
)

// Config is the structure to configure the speculative turn tree.
//
// The soft limits only stop further expansion of the tree; work that is
// already scheduled or running is never dropped because of them.
type Config struct {
	SoftMaxWidth    int `toml:"soft_max_width"`    // stop expanding once this many branches are open...
	SoftMinDepth    int `toml:"soft_min_depth"`    // ...unless the shallowest open branch is at most this deep
	SoftMaxUnknowns int `toml:"soft_max_unknowns"` // stop expanding human turns past this many unexpanded nodes
	Workers         int `toml:"workers"`           // bot computations allowed to run at once, stale ones included

	Logger zerolog.Logger `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		SoftMaxWidth:    100,
		SoftMinDepth:    5,
		SoftMaxUnknowns: 500,
		Workers:         runtime.NumCPU(),
		Logger:          zerolog.Nop(),
	}
}

func (c Config) IsValid() bool {
	return c.SoftMaxWidth > 0 && c.SoftMinDepth >= 0 && c.SoftMaxUnknowns > 0 && c.Workers > 0
}

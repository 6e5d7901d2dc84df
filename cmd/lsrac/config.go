package main

import (
	"github.com/xyproto/env/v2"
)

// config holds the environment-derived defaults for the allocate/watch
// commands, read at the start of every allocate run (including each re-run
// triggered by watch), the way moby-moby's daemon layer reads its own
// env-backed defaults.
type config struct {
	target   string // LSRAC_TARGET: "amd64", "arm64", or "arm32"
	stress   bool   // LSRAC_STRESS: enable the stress-limiting candidate hook
	minOpts  bool   // LSRAC_MINOPTS
}

func loadConfig() config {
	return config{
		target:  env.Str("LSRAC_TARGET", "amd64"),
		stress:  env.Bool("LSRAC_STRESS"),
		minOpts: env.Bool("LSRAC_MINOPTS"),
	}
}

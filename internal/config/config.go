// This file is part of ippcode22 - an IPPcode22 interpreter.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config reads interpreter runtime limits from the environment.
// These are not part of the IPPcode22 language: they bound the harness
// around it (the execution watchdog used to test non-terminating programs
// per the specification's ordering-invariance and infinite-loop
// properties).
package config

import (
	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
)

// Runtime holds environment-configurable limits.
type Runtime struct {
	// MaxInstructions bounds how many instructions Run will execute
	// before aborting with an internal fault. Zero means unbounded.
	MaxInstructions uint64 `env:"IPP_MAX_INSTRUCTIONS" envDefault:"0"`
	// Debug turns on instruction tracing and BREAK diagnostics.
	Debug bool `env:"IPP_DEBUG" envDefault:"false"`
}

// Load parses Runtime from the current environment.
func Load() (Runtime, error) {
	var rt Runtime
	if err := env.Parse(&rt); err != nil {
		return Runtime{}, errors.Wrap(err, "parse environment config")
	}
	return rt, nil
}

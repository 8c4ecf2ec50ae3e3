// Copyright © 2022 FORTH-ICS
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

// Package compute holds the process-wide execution environment.
package compute

import (
	"os"

	"fmsub/internal/compute/endpoint"

	"github.com/rs/zerolog"
)

var (
	// Environment is the host configuration, populated once at startup.
	Environment HostEnvironment

	// Runtime is the fmsub runtime directory layout, set by runtime.Initialize().
	Runtime endpoint.Runtime

	// DefaultLogger is the shared structured logger.
	DefaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Logger()
)

// HostEnvironment describes the submission host.
type HostEnvironment struct {
	// WorkingDirectory is the root of the runtime directory, typically ~/.fmsub.
	WorkingDirectory string

	// CondaEnv is the name of the conda environment activated by generated scripts.
	CondaEnv string

	// TrainBin is the forward-models training entry point invoked by generated scripts.
	TrainBin string

	// RunSlurm selects submission through sbatch. When false, generated scripts
	// run directly under bash in the background.
	RunSlurm bool
}

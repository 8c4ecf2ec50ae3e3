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

// Package endpoint defines the on-disk layout of the fmsub runtime directory.
package endpoint

import "path/filepath"

// RuntimeDirectoryPermissions are the permissions for directories under the runtime root.
const RuntimeDirectoryPermissions = 0o755

// Runtime is the root of the runtime directory, typically ~/.fmsub.
type Runtime string

func (r Runtime) String() string {
	return string(r)
}

// ScriptsDir holds the generated batch scripts.
func (r Runtime) ScriptsDir() string {
	return filepath.Join(string(r), "scripts")
}

// LogsDir holds the scheduler output files of submitted jobs.
func (r Runtime) LogsDir() string {
	return filepath.Join(string(r), "logs")
}

// RunsDir holds per-run artifacts such as resolved configuration files.
func (r Runtime) RunsDir() string {
	return filepath.Join(string(r), "runs")
}

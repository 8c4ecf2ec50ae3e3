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

package slurm

import (
	"fmsub/pkg/process"

	"github.com/pkg/errors"
)

// CancelJob asks the scheduler to cancel the job with the given ID.
func CancelJob(jobID string) (string, error) {
	out, err := process.Execute(Slurm.CancelCmd, jobID)
	if err != nil {
		return string(out), errors.Wrap(err, "could not run scancel")
	}

	return string(out), nil
}

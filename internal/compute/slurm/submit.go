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
	"fmt"
	"regexp"

	"fmsub/pkg/process"

	"al.essio.dev/pkg/shellescape"
	"github.com/pkg/errors"
)

// Expected format: "Submitted batch job <jobid>"
var submittedRegex = regexp.MustCompile(`Submitted batch job (?P<jid>\d+)`)

// SubmitJob hands the script to sbatch and returns the scheduler job ID.
func SubmitJob(scriptFile string) (string, error) {
	out, err := process.Execute(Slurm.SubmitCmd, scriptFile)
	if err != nil {
		return "", errors.Wrapf(err, "job submission error. out: '%s'", out)
	}

	jobID, err := parseJobID(string(out))
	if err != nil {
		return "", err
	}

	return jobID, nil
}

// SubmitJobDirect executes the script in the background under a login shell,
// bypassing the scheduler. Output goes to outputFile. There is no job ID to
// return in this mode.
func SubmitJobDirect(scriptFile, outputFile string) error {
	out, err := process.Execute("bash", "-c", directCommand(scriptFile, outputFile))
	if err != nil {
		return errors.Wrapf(err, "direct execution error. out: '%s'", out)
	}

	return nil
}

// directCommand builds the background invocation. The script path is handed
// to the login shell as a positional argument and the output path is quoted:
// runtime directories under $HOME may contain spaces.
func directCommand(scriptFile, outputFile string) string {
	return fmt.Sprintf(`nohup bash -l -c 'source "$1"' bash %s > %s 2>&1 &`,
		shellescape.Quote(scriptFile), shellescape.Quote(outputFile))
}

func parseJobID(out string) (string, error) {
	jid := submittedRegex.FindStringSubmatch(out)
	if len(jid) < 2 {
		return "", errors.Errorf("unexpected sbatch output: '%s'", out)
	}

	return jid[1], nil
}

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

// Package script renders the batch scripts that wrap forward-models training runs.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"fmsub/pkg/process"

	"al.essio.dev/pkg/shellescape"
	"github.com/Masterminds/sprig"
	"github.com/google/uuid"
)

var genericMap = map[string]interface{}{
	"param":    EscapeSingleQuote,
	"truncate": truncate,
}

// ParseTemplate returns a custom 'text/template' enhanced with functions for processing batch scripts.
func ParseTemplate(text string) (*template.Template, error) {
	return template.New("").
		Funcs(sprig.TxtFuncMap()).
		Funcs(genericMap).
		Option("missingkey=error").Parse(text)
}

func EscapeSingleQuote(str ...interface{}) string {
	out := make([]string, 0, len(str))
	for _, s := range str {
		if s != nil {
			// wrap fields into single quotes, but escape any single quotes from the payload.
			escaped := shellescape.Quote(strval(s))
			out = append(out, fmt.Sprintf("%v", escaped))
		}
	}
	return strings.Join(out, " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func strval(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ResourceRequest holds the resource directives of a job. Zero-valued optional
// fields are omitted from the directive block.
type ResourceRequest struct {
	// Nodes is the requested node count.
	Nodes int

	// Tasks is the requested task count.
	Tasks int

	// Partition is the queue the job is scheduled against.
	Partition string

	// Time is the wall-clock limit as hours:minutes:seconds.
	Time string

	// GPUs requests --gres=gpu:<n> and a cuda module load. Optional.
	GPUs int

	// CPUsPerTask is optional.
	CPUsPerTask int

	// Memory is the per-node memory request, e.g. "32G". Optional.
	Memory string
}

// JobFields provide the inputs to HostScriptTemplate.
type JobFields struct {
	// JobName identifies the job to the scheduler.
	JobName string

	// OutputPath is where the scheduler writes the job's stdout and stderr.
	OutputPath string

	// ResourceRequest are reserved resources for the job.
	ResourceRequest ResourceRequest

	// CustomFlags are extra raw directives appended to the directive block.
	CustomFlags []string

	// CondaEnv is the runtime environment activated before training starts.
	CondaEnv string

	// TrainBin is the forward-models training entry point.
	TrainBin string

	// ConfigPath is the JSON configuration file handed to the entry point.
	ConfigPath string

	// RunSlurm indicates whether the script carries a scheduler directive block
	// or is meant to run directly under bash.
	RunSlurm bool
}

// HostScriptTemplate is the generated submission script.
//
// Remarks:
//
//	The script is deliberately fire-and-forget: environment activation, the
//	accelerator query and the training invocation all run without error
//	checks, and the trailing report always executes. Scheduler identifiers
//	that are not exported print as empty values.
const HostScriptTemplate = `#!/bin/bash
{{- if .RunSlurm}}

#SBATCH --job-name={{truncate .JobName 64}}
#SBATCH --output={{.OutputPath}}
#SBATCH --nodes={{.ResourceRequest.Nodes}}
#SBATCH --ntasks={{.ResourceRequest.Tasks}}
#SBATCH --partition={{.ResourceRequest.Partition}}
#SBATCH --time={{.ResourceRequest.Time}}
{{- if .ResourceRequest.CPUsPerTask}}
#SBATCH --cpus-per-task={{.ResourceRequest.CPUsPerTask}}
{{- end}}
{{- if .ResourceRequest.Memory}}
#SBATCH --mem={{.ResourceRequest.Memory}}
{{- end}}
{{- if .ResourceRequest.GPUs}}
#SBATCH --gres=gpu:{{.ResourceRequest.GPUs}}
{{- end}}
{{- range $index, $flag := .CustomFlags}}
#SBATCH {{$flag}}
{{- end}}
{{- end}}

############################
# Auto-Generated Script    #
# Please do not edit.      #
############################

{{- if .ResourceRequest.GPUs}}

module load cuda
{{- end}}

source ~/.bashrc
conda activate {{.CondaEnv}}

nvidia-smi || true

{{.TrainBin}} --config_name {{.ConfigPath | param}}

echo "=============================="
echo " JOB FINISHED"
echo "=============================="
echo "Job ID:        $SLURM_JOB_ID"
echo "Job Name:      $SLURM_JOB_NAME"
echo "Nodes:         $SLURM_JOB_NUM_NODES"
echo "CPUs on node:  $SLURM_CPUS_ON_NODE"
echo "Tasks:         $SLURM_NTASKS"
echo "Partition:     $SLURM_JOB_PARTITION"
`

// Render produces the submission script for the given fields.
func Render(fields JobFields) (string, error) {
	tmpl, err := ParseTemplate(HostScriptTemplate)
	if err != nil {
		return "", fmt.Errorf("script template error: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, fields); err != nil {
		return "", fmt.Errorf("script rendering error: %w", err)
	}

	return sb.String(), nil
}

// WriteFile renders the script and stores it as an executable file under dir,
// returning the script path. File names carry a random suffix so that repeated
// submissions of the same job never clobber each other.
func WriteFile(dir string, fields JobFields) (string, error) {
	content, err := Render(fields)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.sh", fields.JobName, uuid.NewString()))

	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return "", fmt.Errorf("could not write script '%s': %w", path, err)
	}

	return path, nil
}

// ValidateScript runs bash -n <filename.sh> to validate the generated script.
func ValidateScript(filepath string) error {
	_, err := process.Execute("bash", "-n", filepath)
	return err
}

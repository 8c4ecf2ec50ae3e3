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
	"context"
	"strings"

	"fmsub/pkg/process"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// JobState is the scheduler-reported state of a job.
type JobState string

const (
	StatePending   JobState = "PENDING"
	StateRunning   JobState = "RUNNING"
	StateCompleted JobState = "COMPLETED"
	StateFailed    JobState = "FAILED"
	StateCancelled JobState = "CANCELLED"
	StateTimeout   JobState = "TIMEOUT"
	StateUnknown   JobState = "UNKNOWN"
)

// IsTerminal reports whether the job has left the queue for good.
func (s JobState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateTimeout:
		return true
	default:
		return false
	}
}

// GetJobState asks squeue for the state of a job. Once the job has left the
// queue, squeue no longer knows it and we fall back to the accounting daemon.
func GetJobState(jobID string) (JobState, error) {
	out, err := process.Execute(Slurm.QueueCmd, "--noheader", "-j", jobID, "-o", "%T")
	if err == nil {
		if state := parseQueueState(string(out)); state != StateUnknown {
			return state, nil
		}
	}

	out, err = process.Execute(Slurm.AcctCmd, "-j", jobID, "-o", "State", "--noheader", "-X")
	if err != nil {
		return StateUnknown, errors.Wrapf(err, "could not query state of job %s", jobID)
	}

	return parseAcctState(string(out)), nil
}

// WaitForTermination polls the job state until it is terminal or the context
// is cancelled. The limiter caps how often the scheduler is queried.
func WaitForTermination(ctx context.Context, jobID string, limiter *rate.Limiter) (JobState, error) {
	for {
		if err := limiter.Wait(ctx); err != nil {
			return StateUnknown, err
		}

		state, err := GetJobState(jobID)
		if err != nil {
			return StateUnknown, err
		}

		if state.IsTerminal() {
			return state, nil
		}
	}
}

func parseQueueState(out string) JobState {
	state := strings.TrimSpace(out)
	if state == "" {
		return StateUnknown
	}

	return JobState(state)
}

// parseAcctState maps sacct's State column to a JobState. Cancelled jobs are
// reported as "CANCELLED by <uid>", timeouts occasionally carry a "+" suffix.
func parseAcctState(out string) JobState {
	state := strings.TrimSpace(out)
	if state == "" {
		return StateUnknown
	}

	state = strings.Fields(state)[0]
	state = strings.TrimSuffix(state, "+")

	if strings.HasPrefix(state, "CANCELLED") {
		return StateCancelled
	}

	return JobState(state)
}

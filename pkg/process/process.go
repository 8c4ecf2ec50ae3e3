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

// Package process provides helpers for running external commands.
package process

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// Execute runs the command and returns its combined stdout and stderr.
func Execute(command string, args ...string) ([]byte, error) {
	out, err := exec.Command(command, args...).CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "could not run '%s'", command)
	}

	return out, nil
}

// ExecuteInDir is like Execute, but runs the command with the given working directory.
func ExecuteInDir(dir, command string, args ...string) ([]byte, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "could not run '%s' in '%s'", command, dir)
	}

	return out, nil
}

// ExecuteWithContext is like Execute, but the command is killed when the context is cancelled.
func ExecuteWithContext(ctx context.Context, command string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, command, args...).CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "could not run '%s'", command)
	}

	return out, nil
}

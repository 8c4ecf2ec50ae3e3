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
	"bufio"
	"encoding/json"
	"os"
	"regexp"
	"strconv"
	"strings"

	"fmsub/pkg/process"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// NodeInfo is one compute node as reported by 'sinfo --json'.
type NodeInfo struct {
	Architecture  string `json:"architecture"`
	KernelVersion string `json:"operating_system"`

	Name     string `json:"name"`
	CPUs     uint64 `json:"cpus"`
	CPUCores uint64 `json:"cores"`
	Gres     string `json:"gres"`

	EphemeralStorage uint64 `json:"temporary_disk"`

	// FreeMemory ... reported in MegaBytes
	//[TODO: temporarily changed it to int64 due to sometimes slurm declares freememory as "-2"]
	FreeMemory int64    `json:"free_memory"`
	Partitions []string `json:"partitions"`
}

// gres strings look like "gpu:4", "gpu:a100:4" or "gpu:a100:4(S:0-1)".
var gresGPURegex = regexp.MustCompile(`gpu(?::[^:,()]+)?:(\d+)`)

// GPUs counts the GPUs advertised in the node's gres string.
func (i NodeInfo) GPUs() uint64 {
	var total uint64

	for _, match := range gresGPURegex.FindAllStringSubmatch(i.Gres, -1) {
		n, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		total += n
	}

	return total
}

// Stats is the cluster-wide node inventory.
type Stats struct {
	Nodes []NodeInfo `json:"nodes"`
}

// Partitions returns the distinct partition names across all nodes.
func (s Stats) Partitions() []string {
	seen := make(map[string]struct{})
	var out []string

	for _, node := range s.Nodes {
		for _, p := range node.Partitions {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				out = append(out, p)
			}
		}
	}

	return out
}

// HasPartition reports whether any node belongs to the named partition.
func (s Stats) HasPartition(name string) bool {
	for _, p := range s.Partitions() {
		if p == name {
			return true
		}
	}

	return false
}

// GetClusterStats queries sinfo for the node inventory.
func GetClusterStats() (Stats, error) {
	out, err := process.Execute(Slurm.StatsCmd, "--long", "--json")
	if err != nil {
		return Stats{}, errors.Wrapf(err, "stats query error. out: '%s'", out)
	}

	return decodeStats(out)
}

func decodeStats(out []byte) (Stats, error) {
	var info Stats

	if err := json.Unmarshal(out, &info); err != nil {
		return Stats{}, errors.Wrap(err, "stats decoding error")
	}

	return info, nil
}

// LocalResources describes the submission host itself, for use when no
// scheduler is around.
type LocalResources struct {
	CPUs      uint64
	MemoryMB  uint64
	StorageMB uint64
}

// GetLocalResources inventories the local machine.
func GetLocalResources() LocalResources {
	return LocalResources{
		CPUs:      getCPUCount(),
		MemoryMB:  getTotalMemory(),
		StorageMB: getTotalStorage("/"),
	}
}

func getTotalMemory() uint64 {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "MemTotal:") {
			parts := strings.Fields(line)
			if len(parts) < 2 {
				continue
			}

			kb, _ := strconv.ParseUint(parts[1], 10, 64)
			return kb / 1024
		}
	}

	return 0
}

func getTotalStorage(path string) uint64 {
	var stat unix.Statfs_t

	if err := unix.Statfs(path, &stat); err != nil {
		return 0
	}

	totalBytes := stat.Blocks * uint64(stat.Bsize)

	return totalBytes / (1024 * 1024)
}

func getCPUCount() uint64 {
	out, err := process.Execute("lscpu", "-p=CPU")
	if err != nil {
		return 0
	}

	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	var maxCPU uint64 = 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		cpu, _ := strconv.ParseUint(line, 10, 64)
		if cpu > maxCPU {
			maxCPU = cpu
		}
	}

	// lscpu outputs 0-indexed CPU numbers, so add 1 to get the count
	return maxCPU + 1
}

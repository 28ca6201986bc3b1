// Copyright 2025 Patrick J. Scruggs
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

package slogdd

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/compute/metadata"
)

const (
	envDeployment     = "SLOGDD_ENV"
	envNodeDeployment = "NODE_ENV"

	defaultDeployment = "local"
	metadataTimeout   = 500 * time.Millisecond
)

// Environment carries the process facts that seed event defaults. Supplying
// one through WithEnvironment keeps the transport independent of ambient
// process state.
type Environment struct {
	// Hostname populates the event host field.
	Hostname string
	// Env is used for the default "env:<value>" tag.
	Env string
}

var (
	detectedEnv     Environment
	detectedEnvOnce sync.Once
)

// DetectEnvironment inspects the running process for its hostname and
// deployment environment. Results are cached for reuse.
func DetectEnvironment() Environment {
	detectedEnvOnce.Do(func() {
		detectedEnv = detectEnvironment()
	})
	return detectedEnv
}

// detectEnvironment performs the uncached lookup.
func detectEnvironment() Environment {
	return Environment{
		Hostname: resolveHostname(),
		Env:      firstNonEmpty(trimmedEnv(envDeployment), trimmedEnv(envNodeDeployment), defaultDeployment),
	}
}

var (
	osHostname       = os.Hostname
	onGCE            = metadata.OnGCE
	metadataHostname = metadata.HostnameWithContext
)

// resolveHostname prefers the kernel hostname and falls back to the Compute
// Engine metadata server when it is unavailable.
func resolveHostname() string {
	if host, err := osHostname(); err == nil && strings.TrimSpace(host) != "" {
		return strings.TrimSpace(host)
	}
	if !onGCE() {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), metadataTimeout)
	defer cancel()
	host, err := metadataHostname(ctx)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(host)
}

// withDefaults fills empty fields from DetectEnvironment.
func (e Environment) withDefaults() Environment {
	if e.Hostname != "" && e.Env != "" {
		return e
	}
	detected := DetectEnvironment()
	if e.Hostname == "" {
		e.Hostname = detected.Hostname
	}
	if e.Env == "" {
		e.Env = detected.Env
	}
	return e
}

// trimmedEnv reads an environment variable and trims surrounding whitespace.
func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// firstNonEmpty returns the first non-empty string after trimming whitespace.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

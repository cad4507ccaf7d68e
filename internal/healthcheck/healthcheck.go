package healthcheck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/rdflow/internal/config"
	"github.com/l3aro/rdflow/pkg/analysis"
	"github.com/l3aro/rdflow/pkg/dfg"
)

// Status values reported for each checked component.
const (
	StatusReady    = "ready"
	StatusDisabled = "disabled"
	StatusError    = "error"
)

// probeStatement is classified to prove the configured classifier works.
const probeStatement = "int probe = 1;"

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Name   string
	Detail string // classifier kind, directory, ...
	Status string // "ready", "disabled" or "error"
	Error  string
}

// HealthCheckResult contains the full health check output for display.
type HealthCheckResult struct {
	EffectivePath  string
	EffectiveScope string // "global", "project" or "" for built-in defaults
	Classifier     ComponentStatus
	Cache          ComponentStatus
	Output         ComponentStatus
}

// Components returns the component statuses in display order.
func (r *HealthCheckResult) Components() []ComponentStatus {
	return []ComponentStatus{r.Classifier, r.Cache, r.Output}
}

// OK reports whether no component is in error.
func (r *HealthCheckResult) OK() bool {
	for _, c := range r.Components() {
		if c.Status == StatusError {
			return false
		}
	}
	return true
}

// Check performs a health check against the given config.
// effectivePath is the config file actually in use, empty for defaults.
func Check(cfg *config.Config, effectivePath string) (*HealthCheckResult, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	return &HealthCheckResult{
		EffectivePath:  effectivePath,
		EffectiveScope: scopeFromPath(effectivePath),
		Classifier:     checkClassifier(cfg),
		Cache:          checkCache(cfg),
		Output:         checkOutput(cfg),
	}, nil
}

// EffectivePath returns the config file Load would pick up with the highest
// priority, or "" when neither the project nor the global file exists.
func EffectivePath() string {
	for _, path := range []string{config.ProjectConfigPath(), config.GlobalConfigPath()} {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// scopeFromPath determines "global" or "project" scope from a config file path.
// Returns empty string if path is empty.
func scopeFromPath(path string) string {
	if path == "" {
		return ""
	}

	globalDir := filepath.Dir(config.GlobalConfigPath())
	if abs, err := filepath.Abs(path); err == nil && strings.HasPrefix(abs, globalDir+string(filepath.Separator)) {
		return "global"
	}
	return "project"
}

// checkClassifier runs the configured classifier on a known declaration.
func checkClassifier(cfg *config.Config) ComponentStatus {
	kind := cfg.ClassifierKind()
	status := ComponentStatus{Name: "Classifier", Detail: string(kind)}

	c := dfg.NewClassifier(kind)
	if closer, ok := c.(interface{ Close() }); ok {
		defer closer.Close()
	}

	v, ok := c.AssignedVariable(probeStatement)
	if !ok || v != "probe" {
		status.Status = StatusError
		status.Error = fmt.Sprintf("%s classifier did not recognise %q", kind, probeStatement)
		return status
	}
	status.Status = StatusReady
	return status
}

// checkCache verifies the cache directory is writable and an existing cache
// file can be decoded.
func checkCache(cfg *config.Config) ComponentStatus {
	status := ComponentStatus{Name: "Cache", Detail: cfg.Cache.Dir}
	if !cfg.Cache.Enabled {
		status.Status = StatusDisabled
		return status
	}

	if err := checkWritable(cfg.Cache.Dir); err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}

	rc, err := analysis.OpenCache(cfg.Cache.Dir, cfg.Cache.MaxEntries)
	if err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	status.Detail = fmt.Sprintf("%s (%d entries)", rc.Path(), rc.Len())
	status.Status = StatusReady
	return status
}

// checkOutput verifies reports could be written to the output directory.
func checkOutput(cfg *config.Config) ComponentStatus {
	status := ComponentStatus{Name: "Output", Detail: cfg.OutputDir}
	if err := checkWritable(cfg.OutputDir); err != nil {
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}
	status.Status = StatusReady
	return status
}

// checkWritable creates and removes a probe file in dir, or in its closest
// existing ancestor when dir does not exist yet. Nothing is created.
func checkWritable(dir string) error {
	if dir == "" {
		return errors.New("directory is not set")
	}

	probe := dir
	for {
		info, err := os.Stat(probe)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", probe)
			}
			break
		}
		if !os.IsNotExist(err) {
			return err
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return fmt.Errorf("no existing parent for %s", dir)
		}
		probe = parent
	}

	f, err := os.CreateTemp(probe, ".rdflow-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", probe, err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Package config loads the treekit CLI configuration: engine defaults plus
// named batch jobs, from YAML, JSON or HCL files. Library callers of
// pkg/operation never need it.
package config

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/treekit/treekit/pkg/operation"
	"github.com/treekit/treekit/pkg/policy"
	"github.com/treekit/treekit/pkg/scan"
)

// ⚙️ Settings holds the engine options in their textual config form.
// Every field is optional; empty strings and zero values mean the engine
// defaults.
type Settings struct {
	DestinationRule         string `json:"destination_rule,omitempty" yaml:"destination_rule,omitempty" hcl:"destination_rule,optional"`
	CollidingFiles          string `json:"colliding_files,omitempty" yaml:"colliding_files,omitempty" hcl:"colliding_files,optional"`
	CollidingSubdirectories string `json:"colliding_subdirectories,omitempty" yaml:"colliding_subdirectories,omitempty" hcl:"colliding_subdirectories,optional"`
	Symlinks                string `json:"symlinks,omitempty" yaml:"symlinks,omitempty" hcl:"symlinks,optional"`
	BrokenSymlinks          string `json:"broken_symlinks,omitempty" yaml:"broken_symlinks,omitempty" hcl:"broken_symlinks,optional"`
	MoveStrategy            string `json:"move_strategy,omitempty" yaml:"move_strategy,omitempty" hcl:"move_strategy,optional"`

	// DepthLimit bounds traversal depth; nil means unlimited, 0 means
	// direct children only.
	DepthLimit *int `json:"depth_limit,omitempty" yaml:"depth_limit,omitempty" hcl:"depth_limit,optional"`

	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`

	ReadBufferSize             int   `json:"read_buffer_size,omitempty" yaml:"read_buffer_size,omitempty" hcl:"read_buffer_size,optional"`
	WriteBufferSize            int   `json:"write_buffer_size,omitempty" yaml:"write_buffer_size,omitempty" hcl:"write_buffer_size,optional"`
	ProgressUpdateByteInterval int64 `json:"progress_update_byte_interval,omitempty" yaml:"progress_update_byte_interval,omitempty" hcl:"progress_update_byte_interval,optional"`
}

// Job actions.
const (
	ActionCopy = "copy"
	ActionMove = "move"
)

// 📋 Job is one named copy or move to run as part of a batch.
type Job struct {
	Name        string    `json:"name" yaml:"name" hcl:"name,label"`
	Action      string    `json:"action" yaml:"action" hcl:"action"`
	Source      string    `json:"source" yaml:"source" hcl:"source"`
	Destination string    `json:"destination" yaml:"destination" hcl:"destination"`
	Options     *Settings `json:"options,omitempty" yaml:"options,omitempty" hcl:"options,block"`
}

// 📚 Config is the complete CLI configuration.
type Config struct {
	Defaults *Settings `json:"defaults,omitempty" yaml:"defaults,omitempty" hcl:"defaults,block"`
	Jobs     []Job     `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"job,block"`
}

// Validate checks the configuration for consistency: job fields present,
// actions known, every textual option parseable.
func (cfg *Config) Validate(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	if cfg.Defaults != nil {
		if _, err := cfg.Defaults.copyOptions(); err != nil {
			return errors.Errorf("validating defaults: %w", err)
		}
		if _, err := cfg.Defaults.moveOptions(); err != nil {
			return errors.Errorf("validating defaults: %w", err)
		}
	}

	names := map[string]bool{}
	for i, job := range cfg.Jobs {
		if job.Name == "" {
			return errors.Errorf("job %d has no name", i)
		}
		if names[job.Name] {
			return errors.Errorf("duplicate job name %q", job.Name)
		}
		names[job.Name] = true

		if job.Action != ActionCopy && job.Action != ActionMove {
			return errors.Errorf("job %q: unknown action %q", job.Name, job.Action)
		}
		if job.Source == "" {
			return errors.Errorf("job %q: source is required", job.Name)
		}
		if job.Destination == "" {
			return errors.Errorf("job %q: destination is required", job.Name)
		}

		settings := MergeSettings(cfg.Defaults, job.Options)
		if _, err := settings.copyOptions(); err != nil {
			return errors.Errorf("job %q: %w", job.Name, err)
		}
		if _, err := settings.moveOptions(); err != nil {
			return errors.Errorf("job %q: %w", job.Name, err)
		}
	}

	logger.Debug().Int("jobs", len(cfg.Jobs)).Msg("configuration validated")

	return nil
}

// MergeSettings overlays job-level settings on top of the defaults. Either
// argument may be nil.
func MergeSettings(defaults, override *Settings) Settings {
	var merged Settings
	if defaults != nil {
		merged = *defaults
	}
	if override == nil {
		return merged
	}

	if override.DestinationRule != "" {
		merged.DestinationRule = override.DestinationRule
	}
	if override.CollidingFiles != "" {
		merged.CollidingFiles = override.CollidingFiles
	}
	if override.CollidingSubdirectories != "" {
		merged.CollidingSubdirectories = override.CollidingSubdirectories
	}
	if override.Symlinks != "" {
		merged.Symlinks = override.Symlinks
	}
	if override.BrokenSymlinks != "" {
		merged.BrokenSymlinks = override.BrokenSymlinks
	}
	if override.MoveStrategy != "" {
		merged.MoveStrategy = override.MoveStrategy
	}
	if override.DepthLimit != nil {
		merged.DepthLimit = override.DepthLimit
	}
	if override.Exclude != nil {
		merged.Exclude = override.Exclude
	}
	if override.ReadBufferSize != 0 {
		merged.ReadBufferSize = override.ReadBufferSize
	}
	if override.WriteBufferSize != 0 {
		merged.WriteBufferSize = override.WriteBufferSize
	}
	if override.ProgressUpdateByteInterval != 0 {
		merged.ProgressUpdateByteInterval = override.ProgressUpdateByteInterval
	}

	return merged
}

// CopyOptions converts the settings into engine copy options.
func (s Settings) CopyOptions() (operation.CopyOptions, error) {
	return s.copyOptions()
}

// MoveOptions converts the settings into engine move options.
func (s Settings) MoveOptions() (operation.MoveOptions, error) {
	return s.moveOptions()
}

func (s Settings) copyOptions() (operation.CopyOptions, error) {
	var opts operation.CopyOptions
	var err error

	if opts.DestinationRule, err = policy.ParseDestinationDirectoryRule(s.DestinationRule); err != nil {
		return opts, err
	}
	if opts.CollidingFiles, err = policy.ParseCollidingFileBehaviour(s.CollidingFiles); err != nil {
		return opts, err
	}
	if opts.CollidingSubdirectories, err = policy.ParseCollidingSubdirectoryBehaviour(s.CollidingSubdirectories); err != nil {
		return opts, err
	}
	if opts.Symlinks, err = policy.ParseSymlinkBehaviour(s.Symlinks); err != nil {
		return opts, err
	}
	if opts.BrokenSymlinks, err = policy.ParseBrokenSymlinkBehaviour(s.BrokenSymlinks); err != nil {
		return opts, err
	}

	if s.DepthLimit != nil {
		if *s.DepthLimit < 0 {
			return opts, errors.Errorf("depth_limit must not be negative, got %d", *s.DepthLimit)
		}
		opts.DepthLimit = scan.Limited(*s.DepthLimit)
	}

	opts.ExcludePatterns = s.Exclude
	opts.ReadBufferSize = s.ReadBufferSize
	opts.WriteBufferSize = s.WriteBufferSize
	opts.ProgressUpdateByteInterval = s.ProgressUpdateByteInterval

	return opts, nil
}

func (s Settings) moveOptions() (operation.MoveOptions, error) {
	var opts operation.MoveOptions
	var err error

	if opts.Strategy, err = policy.ParseMoveStrategy(s.MoveStrategy); err != nil {
		return opts, err
	}
	if opts.DestinationRule, err = policy.ParseDestinationDirectoryRule(s.DestinationRule); err != nil {
		return opts, err
	}
	if opts.CollidingFiles, err = policy.ParseCollidingFileBehaviour(s.CollidingFiles); err != nil {
		return opts, err
	}
	if opts.CollidingSubdirectories, err = policy.ParseCollidingSubdirectoryBehaviour(s.CollidingSubdirectories); err != nil {
		return opts, err
	}

	opts.ReadBufferSize = s.ReadBufferSize
	opts.WriteBufferSize = s.WriteBufferSize
	opts.ProgressUpdateByteInterval = s.ProgressUpdateByteInterval

	return opts, nil
}

// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"slipway-cli/internal/config"
	"slipway-cli/internal/toolrun"
	"slipway-cli/internal/tools"
	"slipway-cli/internal/workspace"
)

type (
	// App wires the workspace, pins, resolved tool set, and shared
	// dependencies. It is the composition root for the CLI layer: command
	// handlers build an App and delegate to the internal components.
	App struct {
		Manifest *workspace.Manifest
		Pins     config.Pins
		Tools    *tools.Set
		Runner   toolrun.Runner
		Logger   *log.Logger

		// Root is the workspace root (the manifest's directory).
		Root string
	}
)

// newApp loads the manifest and resolves pins and tools. Everything in the
// returned App is read-only for the rest of the invocation.
func newApp(ctx context.Context) (*App, error) {
	path := manifestPath
	if path == "" {
		path = workspace.DefaultManifestName
	}

	manifest, err := workspace.Load(path)
	if err != nil {
		return nil, err
	}

	pins, err := config.NewProvider().Load(ctx, config.LoadOptions{Manifest: manifest})
	if err != nil {
		return nil, err
	}

	toolSet, err := tools.Resolve(manifest, pins)
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(manifest.FilePath)

	return &App{
		Manifest: manifest,
		Pins:     pins,
		Tools:    toolSet,
		Runner:   toolrun.NewExecRunner(),
		Logger:   newLogger(),
		Root:     root,
	}, nil
}

// newLogger builds the CLI's structured logger.
func newLogger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "slipway",
	})
}

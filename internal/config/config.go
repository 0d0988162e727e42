// SPDX-License-Identifier: MPL-2.0

// Package config resolves the process-wide toolchain and platform version
// pins. The pins are loaded once at startup (defaults, then the manifest's
// [pins] section, then environment overrides) and the resulting value is
// immutable: components receive it explicitly instead of consulting any
// ambient global.
package config

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"slipway-cli/internal/workspace"
)

const (
	// EnvToolchainVersion overrides the toolchain pin.
	EnvToolchainVersion = "SLIPWAY_TOOLCHAIN_VERSION"
	// EnvPlatformVersion overrides the platform pin.
	EnvPlatformVersion = "SLIPWAY_PLATFORM_VERSION"

	// DefaultToolchainVersion is the pinned compiler toolchain channel used
	// when neither the manifest nor the environment provides one.
	DefaultToolchainVersion = "1.78.0"
	// DefaultPlatformVersion is the pinned platform SDK version used when
	// neither the manifest nor the environment provides one.
	DefaultPlatformVersion = "2.1.0"
)

type (
	// Pins holds the immutable version pins shared read-only by every
	// component that invokes an external tool at a specific version.
	Pins struct {
		// ToolchainVersion pins the compiler toolchain.
		ToolchainVersion string `mapstructure:"toolchain"`
		// PlatformVersion pins the target platform SDK.
		PlatformVersion string `mapstructure:"platform"`
	}

	// LoadOptions defines explicit pin loading inputs.
	LoadOptions struct {
		// Manifest supplies the [pins] manifest section when present.
		Manifest *workspace.Manifest
	}

	// Provider loads pins from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (Pins, error)
	}

	envProvider struct{}
)

// NewProvider creates a pin provider backed by defaults, the manifest, and
// the process environment, in increasing precedence.
func NewProvider() Provider {
	return &envProvider{}
}

// Load resolves the pins. The returned value is a plain struct; callers own
// their copy and nothing mutates it afterwards.
func (p *envProvider) Load(ctx context.Context, opts LoadOptions) (Pins, error) {
	select {
	case <-ctx.Done():
		return Pins{}, fmt.Errorf("load pins canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	v.SetDefault("toolchain", DefaultToolchainVersion)
	v.SetDefault("platform", DefaultPlatformVersion)

	// Manifest values merge at config level so the environment still wins.
	if opts.Manifest != nil {
		values := make(map[string]any)
		if opts.Manifest.Pins.Toolchain != "" {
			values["toolchain"] = opts.Manifest.Pins.Toolchain
		}
		if opts.Manifest.Pins.Platform != "" {
			values["platform"] = opts.Manifest.Pins.Platform
		}
		if len(values) > 0 {
			if err := v.MergeConfigMap(values); err != nil {
				return Pins{}, fmt.Errorf("failed to merge manifest pins: %w", err)
			}
		}
	}

	// Environment wins over both defaults and manifest.
	if err := v.BindEnv("toolchain", EnvToolchainVersion); err != nil {
		return Pins{}, fmt.Errorf("failed to bind %s: %w", EnvToolchainVersion, err)
	}
	if err := v.BindEnv("platform", EnvPlatformVersion); err != nil {
		return Pins{}, fmt.Errorf("failed to bind %s: %w", EnvPlatformVersion, err)
	}

	var pins Pins
	if err := v.Unmarshal(&pins); err != nil {
		return Pins{}, fmt.Errorf("failed to resolve version pins: %w", err)
	}

	if pins.ToolchainVersion == "" {
		return Pins{}, fmt.Errorf("toolchain pin resolved empty")
	}
	if pins.PlatformVersion == "" {
		return Pins{}, fmt.Errorf("platform pin resolved empty")
	}

	return pins, nil
}

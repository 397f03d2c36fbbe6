//go:build mage

// Mage targets for building the ripser++ extension from a source checkout.
package main

import (
	"context"
	"fmt"

	"github.com/magefile/mage/mg"

	ripserext "github.com/contriboss/ripserplusplus-build"
)

// Default target to run when none is specified.
var Default = Build

// Build compiles the extension in Release mode.
func Build(ctx context.Context) error {
	return build(ctx, false)
}

// Debug compiles the extension in Debug mode.
func Debug(ctx context.Context) error {
	return build(ctx, true)
}

// DryRun logs the CMake invocations of a Release build without running them.
func DryRun(ctx context.Context) error {
	config, ext, err := load()
	if err != nil {
		return err
	}
	config.DryRun = true
	_, err = ripserext.NewBuildExt().Run(ctx, config, []*ripserext.Extension{ext})
	return err
}

// Clean runs the CMake clean target.
func Clean(ctx context.Context) error {
	config, ext, err := load()
	if err != nil {
		return err
	}
	return ripserext.NewBuildExt().Clean(ctx, config, []*ripserext.Extension{ext})
}

func build(ctx context.Context, debug bool) error {
	config, ext, err := load()
	if err != nil {
		return err
	}
	config.Debug = debug

	results, err := ripserext.NewBuildExt().Run(ctx, config, []*ripserext.Extension{ext})
	if err != nil {
		return err
	}
	for _, result := range results {
		for _, artifact := range result.Extensions {
			fmt.Println(artifact)
		}
	}
	return nil
}

func load() (*ripserext.BuildConfig, *ripserext.Extension, error) {
	settings, err := ripserext.LoadSettings(ripserext.LoadOptions{})
	if err != nil {
		return nil, nil, err
	}

	config, err := settings.BuildConfig()
	if err != nil {
		return nil, nil, err
	}
	config.Verbose = config.Verbose || mg.Verbose()

	ext, err := ripserext.NewExtension(settings.Name)
	if err != nil {
		return nil, nil, err
	}
	return config, ext, nil
}

//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Renders the example clip described by example.toml, or by $RERENDER_CONFIG.
func (Run) Example() error {
	mg.Deps(Build.Binary)
	cfg := os.Getenv("RERENDER_CONFIG")
	if cfg == "" {
		cfg = "example.toml"
	}
	fmt.Println("Rendering with", cfg)
	if _, err := executeCmd("bin/rerender", withArgs("-config", cfg), withStream()); err != nil {
		return err
	}
	return nil
}

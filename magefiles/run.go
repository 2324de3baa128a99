//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the configurator with configurator.toml.
func (Run) Configurator() error {
	fmt.Println("Run configurator...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "configurator.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the configurator headless, reading commands from stdin.
func (Run) Headless() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/configurator", withArgs("-config", "configurator.toml", "-host", "headless"), withStream(), withStdin()); err != nil {
		return err
	}
	return nil
}

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the rerender binary into bin/.
func (Build) Binary() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/rerender", "."), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs the unit tests with the race detector.
func (Test) Unit() error {
	if _, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

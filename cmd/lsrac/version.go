package main

import "github.com/Masterminds/semver/v3"

// minIRSchemaVersion is the oldest IR module schema this build accepts; the
// version command prints it. The allocate command runs only on the built-in
// demo module and does not call checkSchemaVersion.
var minIRSchemaVersion = semver.MustParse("1.0.0")

// checkSchemaVersion rejects a module whose declared schema predates
// minIRSchemaVersion.
func checkSchemaVersion(declared string) error {
	v, err := semver.NewVersion(declared)
	if err != nil {
		return err
	}
	c, err := semver.NewConstraint(">= " + minIRSchemaVersion.String())
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return errSchemaTooOld(declared)
	}
	return nil
}

type errSchemaTooOld string

func (e errSchemaTooOld) Error() string {
	return "lsrac: module schema " + string(e) + " predates minimum " + minIRSchemaVersion.String()
}

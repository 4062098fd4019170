// register.go wires sim/engine's constructor into the sim package's
// registration variable (NewEngineFunc). This init() runs when any package
// imports sim/engine, breaking the import cycle between sim/ (interface
// owner) and sim/engine/ (implementation). Production code imports
// sim/engine directly; test code in package sim uses engine_import_test.go
// for the blank import.
package engine

import "github.com/drozzy/vmmc/sim"

func init() {
	sim.NewEngineFunc = NewEngine
}

package sim_test

// Blank import triggers sim/engine's init(), which registers NewEngineFunc.
// This allows package sim's internal test files to build drivers without
// directly importing sim/engine (which would create an import cycle).
import _ "github.com/drozzy/vmmc/sim/engine"

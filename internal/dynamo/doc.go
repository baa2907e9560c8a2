// Package dynamo provides the core primitives shared by the molecular
// mechanics engine.
//
// The package defines the vocabulary every other package speaks:
//
//   - [Group]: the integration rate a force belongs to (fast or slow)
//   - [Term]: a single energy contributor that accumulates forces
//   - [ForceField]: a per-group source of energy and forces
//   - [Observer]: receives recorded frames during a run
//   - typed errors for topology, parameterization, conservation and
//     divergence failures
//
// Units throughout are nanometres, picoseconds, atomic mass units and
// kJ/mol, so a force divided by a mass is an acceleration in nm/ps².
//
// # Example
//
//	top, _ := topology.New(atoms, bonds)
//	eng, _ := sim.New(top, sim.DefaultConfig())
//	res, _ := eng.Run(1000)
//
// # Thread Safety
//
// Engines are NOT thread-safe. Nonbonded pair evaluation fans out over
// [ParallelFor] internally and reduces before returning.
package dynamo

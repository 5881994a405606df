// Package simulator provides an in-memory controller that implements
// adssymbols.Transport.
//
// Memory is organized as one byte region per index group. Reads and
// writes address a region by group and offset and are bounds checked;
// nothing grows implicitly. Install publishes a symbol table and a data
// type table the way a runtime does, under the upload index groups, and
// allocates zeroed memory for every symbol:
//
//	sim := simulator.New(addr)
//	if err := sim.Install(symbolBlob, dataTypeBlob); err != nil {
//		return err
//	}
//	cat, err := catalog.Load(ctx, sim, addr)
//
// A Simulator is safe for concurrent use.
package simulator

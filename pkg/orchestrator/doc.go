// Package orchestrator wires form catalogs, the entity store, synchronizers
// and output renderers into a single entry point: pick a form by entity name,
// open it in create or edit mode and render its state.
package orchestrator

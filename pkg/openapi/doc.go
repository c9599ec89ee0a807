// Package openapi derives form descriptions from OpenAPI 3 component schemas.
// Each property of an entity schema becomes a field: booleans map to checkbox
// fields, date and date-time strings to date fields, and properties pointing
// at another entity schema (via $ref or an x-relationships extension) to
// reference fields whose options come from that entity's collection.
package openapi

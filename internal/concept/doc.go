// Package concept defines the database driver contract consumed by the
// behaviour harness.
//
// The harness never talks to a concrete driver. Steps reach the database
// through the interfaces declared here:
//
//	Driver -> DatabaseManager -> Database
//	Driver -> Transaction -> ConceptManager -> ThingType / Thing
//
// Type lookups return (nil, nil) when the driver has no such type. Deciding
// whether absence is a failure is left to the caller. Driver failures are
// reported as *DriverError values carrying a stable Code so scenarios can
// assert on specific error paths.
package concept

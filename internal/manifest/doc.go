// Package manifest records what a gen192 run produced in a SQLite database.
//
// Each run gets a UUIDv7 id. Every persisted template is one artifact row
// carrying its combination, content digest, notes and validator verdict, so
// a sweep can be audited after the build directory has been zipped.
//
// Artifact paths are unique per run, mirroring the rule that a run never
// overwrites a file it generated.
package manifest

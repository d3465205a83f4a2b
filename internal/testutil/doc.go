// Package testutil provides shared fixtures for gen192 tests: small
// C-PAC-shaped base templates and golden-file assertions.
package testutil

package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/gen192/internal/doc"
)

// Golden returns a goldie instance reading testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/... -update
func Golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// AssertGoldenDoc compares the canonical JSON of m against
// testdata/golden/<name>.golden.
func AssertGoldenDoc(t *testing.T, name string, m doc.Map) {
	t.Helper()

	data, err := doc.MarshalCanonical(m)
	if err != nil {
		t.Fatalf("canonical form of %s: %v", name, err)
	}
	Golden(t).Assert(t, name, data)
}

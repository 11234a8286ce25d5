// Package oracle queries third-party vulnerability databases for a
// dependency's known vulnerabilities.
package oracle

import "context"

// Vulnerability is a single vulnerability record returned by an Oracle.
type Vulnerability struct {
	ID        string
	Summary   string
	CVSSScore float64
	HasScore  bool
}

// Oracle looks up known vulnerabilities for a package version. Implementations
// must never return an error for network or remote-service failures — those
// degrade to an empty result, since an unreachable oracle must not fail the
// scan.
type Oracle interface {
	Lookup(ctx context.Context, ecosystem, name, version string) []Vulnerability
}

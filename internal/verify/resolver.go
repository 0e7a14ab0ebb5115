package verify

import (
	"context"
	"net"
)

// TXTResolver looks up DNS TXT records. It is an interface so tests can
// stub DNS and so deployments can swap in a custom resolver.
type TXTResolver interface {
	// LookupTXT returns the TXT records for name. Each returned string is the
	// concatenated value of one record.
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Ensure the stdlib resolver satisfies the contract.
var _ TXTResolver = (*net.Resolver)(nil)

// DefaultResolver returns the system DNS resolver. Lookups honor the
// deadline on the context they are given.
func DefaultResolver() TXTResolver {
	return net.DefaultResolver
}

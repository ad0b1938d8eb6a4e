package x

import (
	weave "github.com/iov-one/weave-timedwallet"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. It is passed into handler constructors, so that a
// handler asks "who signed this transaction" without knowing how the
// signatures were verified.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled
	GetConditions(weave.Context) []weave.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(weave.Context, weave.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

// GetConditions returns the conditions of all Authenticators in the order
// they were chained.
func (m MultiAuth) GetConditions(ctx weave.Context) []weave.Condition {
	var res []weave.Condition
	for _, impl := range m.impls {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

// HasAddress returns true if any of the chained Authenticators knows the
// address.
func (m MultiAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first authenticated condition, or nil if the
// transaction was not signed at all.
func MainSigner(ctx weave.Context, auth Authenticator) weave.Condition {
	conds := auth.GetConditions(ctx)
	if len(conds) == 0 {
		return nil
	}
	return conds[0]
}

// MainSignerAddress returns the address of the main signer, or nil.
func MainSignerAddress(ctx weave.Context, auth Authenticator) weave.Address {
	c := MainSigner(ctx, auth)
	if c == nil {
		return nil
	}
	return c.Address()
}

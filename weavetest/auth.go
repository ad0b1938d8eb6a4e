package weavetest

import (
	"context"
	"fmt"

	weave "github.com/iov-one/weave-timedwallet"
)

// Auth is a mock implementing the x.Authenticator interface with a fixed
// set of conditions. Signers come first and Signer last, so when only Signer
// is set it is the main signer.
type Auth struct {
	Signer  weave.Condition
	Signers []weave.Condition
}

func (a *Auth) GetConditions(weave.Context) []weave.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := make([]weave.Condition, 0, len(a.Signers)+1)
	conds = append(conds, a.Signers...)
	return append(conds, a.Signer)
}

func (a *Auth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth is a mock implementing the x.Authenticator interface that reads
// the conditions from the context, where SetConditions stored them under
// Key.
type CtxAuth struct {
	Key string
}

func (a *CtxAuth) SetConditions(ctx weave.Context, conds ...weave.Condition) weave.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx weave.Context) []weave.Condition {
	switch conds := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []weave.Condition:
		return conds
	default:
		panic(fmt.Sprintf("instead of []weave.Condition got %T", conds))
	}
}

func (a *CtxAuth) HasAddress(ctx weave.Context, addr weave.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []weave.Condition, addr weave.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

package weavetest

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave-timedwallet"
	"github.com/iov-one/weave-timedwallet/errors"
	"github.com/iov-one/weave-timedwallet/store"
)

func TestDecoratedHandler(t *testing.T) {
	cases := map[string]struct {
		decorator      Decorator
		handler        Handler
		wantCheckErr   *errors.Error
		wantDeliverErr *errors.Error
		wantHandled    int
	}{
		"pass through": {
			wantHandled: 2,
		},
		"decorator refuses": {
			decorator:      Decorator{CheckErr: errors.ErrUnauthorized, DeliverErr: errors.ErrUnauthorized},
			wantCheckErr:   errors.ErrUnauthorized,
			wantDeliverErr: errors.ErrUnauthorized,
		},
		"handler fails on deliver": {
			handler:        Handler{DeliverErr: errors.ErrState},
			wantDeliverErr: errors.ErrState,
			wantHandled:    2,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := Decorate(&tc.handler, &tc.decorator)
			ctx := context.Background()
			db := store.MemStore()

			if _, err := h.Check(ctx, db, &Tx{}); !tc.wantCheckErr.Is(err) {
				t.Fatalf("unexpected check error: %+v", err)
			}
			if _, err := h.Deliver(ctx, db, &Tx{}); !tc.wantDeliverErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if got := tc.decorator.CallCount(); got != 2 {
				t.Fatalf("want the decorator called twice, got %d", got)
			}
			if got := tc.handler.CallCount(); got != tc.wantHandled {
				t.Fatalf("want %d handler calls, got %d", tc.wantHandled, got)
			}
		})
	}
}

func TestHandlerResult(t *testing.T) {
	h := &Handler{
		CheckResult:   weave.CheckResult{Log: "checked"},
		DeliverResult: weave.DeliverResult{Data: []byte("wallet")},
	}
	cres, err := h.Check(context.Background(), store.MemStore(), &Tx{})
	if err != nil || cres.Log != "checked" {
		t.Fatalf("unexpected check result: %v, %v", cres, err)
	}
	dres, err := h.Deliver(context.Background(), store.MemStore(), &Tx{})
	if err != nil || string(dres.Data) != "wallet" {
		t.Fatalf("unexpected deliver result: %v, %v", dres, err)
	}
	if h.CheckCallCount() != 1 || h.DeliverCallCount() != 1 {
		t.Fatalf("unexpected call count: %d check, %d deliver", h.CheckCallCount(), h.DeliverCallCount())
	}
}

func TestWriteHandlerWritesBeforeFailing(t *testing.T) {
	db := store.MemStore()
	h := &WriteHandler{Key: []byte("k"), Value: []byte("v"), Err: errors.ErrHuman}
	if _, err := h.Deliver(context.Background(), db, &Tx{}); !errors.ErrHuman.Is(err) {
		t.Fatalf("want human error, got %+v", err)
	}
	if ok, err := db.Has([]byte("k")); err != nil || !ok {
		t.Fatalf("value not written: %v, %v", ok, err)
	}
}

func TestAuth(t *testing.T) {
	alice, bob, carol := NewCondition(), NewCondition(), NewCondition()
	ctx := context.Background()

	auth := &Auth{Signer: alice, Signers: []weave.Condition{bob}}
	conds := auth.GetConditions(ctx)
	if len(conds) != 2 || !conds[0].Equals(bob) || !conds[1].Equals(alice) {
		t.Fatalf("unexpected conditions: %v", conds)
	}
	if !auth.HasAddress(ctx, alice.Address()) || auth.HasAddress(ctx, carol.Address()) {
		t.Fatal("unexpected address check result")
	}

	if got := (&Auth{}).GetConditions(ctx); len(got) != 0 {
		t.Fatalf("want no conditions, got %v", got)
	}

	ctxAuth := &CtxAuth{Key: "auth"}
	if ctxAuth.HasAddress(ctx, alice.Address()) {
		t.Fatal("empty context must not authenticate")
	}
	ctx = ctxAuth.SetConditions(ctx, carol)
	if !ctxAuth.HasAddress(ctx, carol.Address()) || ctxAuth.HasAddress(ctx, alice.Address()) {
		t.Fatal("unexpected context address check result")
	}
}

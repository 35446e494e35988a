package cmdgate

import (
	"context"
	"testing"
)

func TestWrapBlocksDenied(t *testing.T) {
	c := newTestClient(t, WithStrict(true))
	called := false
	wrapped := c.Wrap(func(ctx context.Context, command string) (any, error) {
		called = true
		return nil, nil
	})

	_, err := wrapped(context.Background(), "chmod -R 777 /")
	blocked := requireBlocked(t, err)
	if blocked.Command != "chmod -R 777 /" || blocked.Result.Allowed {
		t.Errorf("unexpected error %+v", blocked)
	}
	if called {
		t.Error("inner function should not be called on deny")
	}
}

func TestWrapAllowsClean(t *testing.T) {
	c := newTestClient(t, WithStrict(true))
	wrapped := c.Wrap(func(ctx context.Context, command string) (any, error) {
		return "ok:" + command, nil
	})

	result, err := wrapped(context.Background(), "curl https://example.com/")
	if err != nil {
		t.Fatalf("expected allow, got error: %v", err)
	}
	if result != "ok:curl https://example.com/" {
		t.Errorf("unexpected result %v", result)
	}
}

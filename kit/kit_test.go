package kit

import (
	"context"
	"testing"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" {
		t.Fatal("empty context should have no request id")
	}
	if GetTransport(ctx) != "inproc" {
		t.Fatalf("default transport: got %q", GetTransport(ctx))
	}

	ctx = WithRequestID(ctx, "req_1")
	ctx = WithTransport(ctx, "http")
	ctx = WithRemoteAddr(ctx, "127.0.0.1:5555")

	if GetRequestID(ctx) != "req_1" {
		t.Errorf("request id: got %q", GetRequestID(ctx))
	}
	if GetTransport(ctx) != "http" {
		t.Errorf("transport: got %q", GetTransport(ctx))
	}
	if GetRemoteAddr(ctx) != "127.0.0.1:5555" {
		t.Errorf("remote addr: got %q", GetRemoteAddr(ctx))
	}
}

package types

import (
	"context"
	"testing"
)

func TestWithRequestID_GetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "inv-123")

	if got := GetRequestID(ctx); got != "inv-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "inv-123")
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty string", got)
	}
}

func TestWithInvocationMode(t *testing.T) {
	ctx := WithInvocationMode(context.Background(), InvocationStatus)

	if got := GetInvocationMode(ctx); got != InvocationStatus {
		t.Errorf("GetInvocationMode() = %q, want %q", got, InvocationStatus)
	}
	if got := GetInvocationMode(context.Background()); got != "" {
		t.Errorf("GetInvocationMode() on empty context = %q, want empty", got)
	}
}

package tenancy

import (
	"context"
	"testing"
)

func TestWithTenantIDRoundTrip(t *testing.T) {
	ctx := WithTenantID(context.Background(), "tenant-42")
	got, ok := TenantIDFromContext(ctx)
	if !ok {
		t.Fatal("expected tenant id in context")
	}
	if got != "tenant-42" {
		t.Fatalf("expected tenant-42, got %s", got)
	}
}

func TestTenantIDFromContextMissing(t *testing.T) {
	if _, ok := TenantIDFromContext(context.Background()); ok {
		t.Fatal("expected no tenant id in empty context")
	}
}

func TestTenantIDFromContextEmpty(t *testing.T) {
	ctx := WithTenantID(context.Background(), "")
	if _, ok := TenantIDFromContext(ctx); ok {
		t.Fatal("expected empty tenant id to be treated as absent")
	}
}

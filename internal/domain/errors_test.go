package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil error", err: nil, want: KindInternal},
		{name: "unknown error", err: errors.New("boom"), want: KindInternal},
		{name: "insufficient stock", err: ErrInsufficientStock, want: KindInvalid},
		{name: "empty cart", err: ErrEmptyCart, want: KindInvalid},
		{name: "payment mismatch", err: ErrPaymentHandleMismatch, want: KindInvalid},
		{name: "wrapped order not found", err: fmt.Errorf("load: %w", ErrOrderNotFound), want: KindNotFound},
		{name: "joined product not found", err: errors.Join(ErrProductNotFound, errors.New("extra")), want: KindNotFound},
		{name: "status transition", err: ErrInvalidStatusTransition, want: KindConflict},
		{name: "idempotency hash mismatch", err: ErrIdempotencyHashMismatch, want: KindConflict},
		{name: "credentials", err: ErrInvalidCredentials, want: KindUnauthenticated},
		{name: "payment authority", err: fmt.Errorf("stripe: %w", ErrPaymentAuthorityUnavailable), want: KindUnavailable},
		{name: "validation", err: &ValidationError{Fields: []FieldError{{Field: "quantity", Message: "must be > 0"}}}, want: KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestValidationErrorOrNil(t *testing.T) {
	var verr ValidationError
	if verr.OrNil() != nil {
		t.Fatal("expected nil for empty validation error")
	}

	verr.Add("product_id", "must be a positive integer")
	verr.Add("quantity", "must be a positive integer")

	err := verr.OrNil()
	if err == nil {
		t.Fatal("expected error when fields are present")
	}
	want := "validation failed: product_id: must be a positive integer; quantity: must be a positive integer"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestSentinelOf(t *testing.T) {
	wrapped := fmt.Errorf("get order 7: %w", ErrOrderNotFound)
	if got := SentinelOf(wrapped); got != ErrOrderNotFound {
		t.Fatalf("SentinelOf() = %v, want %v", got, ErrOrderNotFound)
	}
	if got := SentinelOf(errors.New("boom")); got != nil {
		t.Fatalf("expected nil for unclassified error, got %v", got)
	}
}

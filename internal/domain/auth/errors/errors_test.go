package errors

import "testing"

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidArgument("bad")
	if !IsInvalidArgument(err) {
		t.Fatal("expected invalid argument")
	}

	wrapped := WrapInternal(err, "ctx")
	if !IsInternal(wrapped) {
		t.Fatal("expected internal")
	}
}

func TestTokenErrorKindsAreDistinct(t *testing.T) {
	if IsInvalidToken(ErrExpiredToken) {
		t.Fatal("expired must not match invalid")
	}
	if IsExpiredToken(ErrInvalidToken) {
		t.Fatal("invalid must not match expired")
	}
	if IsTokenMismatch(ErrInvalidToken) || IsMissingToken(ErrInvalidToken) {
		t.Fatal("mismatch/missing must not match invalid")
	}
}

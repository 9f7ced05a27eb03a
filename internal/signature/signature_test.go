package signature

import "testing"

func TestComputeKnownVector(t *testing.T) {
	t.Parallel()

	// RFC 4231 test case 2: key "Jefe", data "what do ya want for nothing?".
	got := Compute([]byte("Jefe"), []byte("what do ya want for nothing?"))
	want := "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"
	if got != want {
		t.Fatalf("Compute() = %s, want %s", got, want)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	body := []byte(`{"user":"a@b.com"}`)

	if !Verify(secret, body, Compute(secret, body)) {
		t.Fatalf("expected matching signature to verify")
	}
	if Verify(secret, body, "deadbeef") {
		t.Fatalf("expected mismatched signature to fail")
	}
	if Verify(secret, body, "") {
		t.Fatalf("expected empty signature to fail")
	}
	if Verify([]byte("other-secret"), body, Compute(secret, body)) {
		t.Fatalf("expected signature under wrong secret to fail")
	}
}

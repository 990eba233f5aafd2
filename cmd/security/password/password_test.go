package password

import "testing"

func TestHashAndVerify_OK(t *testing.T) {
	h, err := Hash("operator secret 123!", DefaultParams())
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := Verify(h, "operator secret 123!")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h, err := Hash("operator secret 123!", DefaultParams())
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := Verify(h, "wrong password")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	ok, err := Verify("not-a-hash", "whatever")
	if err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
	if ok {
		t.Fatalf("expected false")
	}
}

func TestHash_EmptyRejected(t *testing.T) {
	if _, err := Hash("", DefaultParams()); err != ErrEmptyPassword {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestVerify_PathologicalCostRejected(t *testing.T) {
	// m is far above the configured bound; Verify must refuse to compute it.
	h := "$argon2id$v=19$m=4194304,t=3,p=2$c29tZXNhbHRzb21lc2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	ok, err := Verify(h, "whatever")
	if err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
	if ok {
		t.Fatalf("expected false")
	}
}

package adapters

import "testing"

func TestPasswordService(t *testing.T) {
	service := NewPasswordService()

	t.Run("verifies the original password against its hash", func(t *testing.T) {
		hash, err := service.HashPassword("correct horse battery staple")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hash == "correct horse battery staple" {
			t.Error("expected hash to differ from the plaintext")
		}

		if err := service.VerifyPassword(hash, "correct horse battery staple"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		hash, err := service.HashPassword("correct horse battery staple")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := service.VerifyPassword(hash, "wrong password"); err == nil {
			t.Error("expected verification to fail")
		}
	})

	t.Run("rejects a malformed hash", func(t *testing.T) {
		if err := service.VerifyPassword("not-a-bcrypt-hash", "anything"); err == nil {
			t.Error("expected verification to fail")
		}
	})
}

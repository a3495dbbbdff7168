package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("secret")

	token, err := m.IssueToken("u1")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	userID, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if userID != "u1" {
		t.Errorf("expected u1, got %s", userID)
	}
}

func TestRefreshTokenNotValidAsAccessToken(t *testing.T) {
	m := NewManager("secret")

	refresh, err := m.IssueRefreshToken("u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken failed: %v", err)
	}

	if _, err := m.ValidateToken(refresh); err == nil {
		t.Error("a refresh token must not pass access-token validation")
	}
	if userID, err := m.ValidateRefreshToken(refresh); err != nil || userID != "u1" {
		t.Errorf("refresh validation failed: %s, %v", userID, err)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").IssueToken("u1")
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := NewManager("secret-b").ValidateToken(token); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !CheckPasswordHash("hunter2", hash) {
		t.Error("correct password should verify")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password should not verify")
	}
}

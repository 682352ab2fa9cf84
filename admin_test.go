package cordsearch

import "testing"

func TestAdminAuthEmptySecretDisablesAuth(t *testing.T) {
	a := NewAdminAuth("")
	if !a.Verify("anything") {
		t.Error("expected an empty secret to accept any token")
	}
	if a.Token() != "" {
		t.Error("expected an empty secret to produce an empty token")
	}
}

func TestAdminAuthVerifiesOwnToken(t *testing.T) {
	a := NewAdminAuth("shared-secret")
	tok := a.Token()
	if tok == "" {
		t.Fatal("expected a non-empty token for a non-empty secret")
	}
	if !a.Verify(tok) {
		t.Error("expected the auth's own token to verify")
	}
	if a.Verify("wrong-token") {
		t.Error("expected a wrong token to fail verification")
	}
	if err := a.CheckErr("wrong-token"); err == nil {
		t.Error("expected CheckErr to return an error for an invalid token")
	}
}

func TestAdminAuthDifferentSecretsProduceDifferentTokens(t *testing.T) {
	a1 := NewAdminAuth("secret-one")
	a2 := NewAdminAuth("secret-two")
	if a1.Token() == a2.Token() {
		t.Error("expected different secrets to produce different tokens")
	}
}

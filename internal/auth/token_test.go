package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/movie-catalog/internal/domain"
	apperrors "github.com/spec-kit/movie-catalog/pkg/util/errorutil"
)

const testUserID = "4f1c3a52-8d5e-4a7a-9c1b-2f4a6e8d0b11"

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	issued, err := tm.GenerateToken(&domain.User{ID: testUserID, Email: "luke@tatooine.net"})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if issued.SubjectID != testUserID || !issued.ExpiresAt.After(issued.IssuedAt) {
		t.Fatalf("unexpected token metadata %+v", issued)
	}

	claims, err := tm.ParseToken(issued.Value)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != testUserID || claims.Email != "luke@tatooine.net" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	issued, err := tm.GenerateToken(&domain.User{ID: testUserID})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tm.now = time.Now

	_, err = tm.ParseToken(issued.Value)
	f, ok := apperrors.AsFailure(err)
	if !ok || f.Code != apperrors.CodeTokenExpired {
		t.Fatalf("expected TOKEN_EXPIRED, got %v", err)
	}
}

func TestParseTokenWrongSecretIsInvalid(t *testing.T) {
	issued, err := NewTokenManager("other", 5).GenerateToken(&domain.User{ID: testUserID})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = NewTokenManager("secret", 5).ParseToken(issued.Value)
	f, ok := apperrors.AsFailure(err)
	if !ok || f.Code != apperrors.CodeInvalidToken {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestParseExpiredTokenWithWrongSecretIsInvalid(t *testing.T) {
	other := NewTokenManager("other", 1)
	other.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	issued, err := other.GenerateToken(&domain.User{ID: testUserID})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	_, err = NewTokenManager("secret", 5).ParseToken(issued.Value)
	if f, ok := apperrors.AsFailure(err); !ok || f.Code != apperrors.CodeInvalidToken {
		t.Fatalf("forged expired token must be INVALID_TOKEN, got %v", err)
	}
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   testUserID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := NewTokenManager("secret", 5).ParseToken(unsigned); !apperrors.IsKind(err, apperrors.KindAuthentication) {
		t.Fatalf("expected authentication failure, got %v", err)
	}
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", 5).ParseToken("not-a-jwt")
	if f, ok := apperrors.AsFailure(err); !ok || f.Code != apperrors.CodeInvalidToken {
		t.Fatalf("expected INVALID_TOKEN, got %v", err)
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)
	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ok, err := h.Verify(hash, "correct horse"); err != nil || !ok {
		t.Fatalf("expected match, got %v, %v", ok, err)
	}
	if ok, err := h.Verify(hash, "wrong"); err != nil || ok {
		t.Fatalf("expected mismatch, got %v, %v", ok, err)
	}
	if _, err := h.Verify("not-a-hash", "x"); err == nil {
		t.Fatalf("expected error for malformed hash")
	}
}

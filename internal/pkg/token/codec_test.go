package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skatepark/skater-profiles/internal/core/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("secret", 0)
	in := domain.Claims{ID: 1, Name: "Ann", Email: "a@b.com", Admin: true}

	signed, err := codec.Sign(in)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	out, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if *out != in {
		t.Fatalf("expected %+v, got %+v", in, *out)
	}
}

func TestCodec_DefaultTTL(t *testing.T) {
	if got := NewCodec("secret", 0).TTL(); got != 15*time.Minute {
		t.Fatalf("expected 15m, got %s", got)
	}
}

func TestCodec_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodec("secret", 15*time.Minute)
	codec.now = fixedClock(issued)

	signed, err := codec.Sign(domain.Claims{ID: 7})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	codec.now = fixedClock(issued.Add(14 * time.Minute))
	if _, err := codec.Verify(signed); err != nil {
		t.Fatalf("expected token valid inside window, got %v", err)
	}

	codec.now = fixedClock(issued.Add(16 * time.Minute))
	if _, err := codec.Verify(signed); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCodec_WrongSecret(t *testing.T) {
	signed, err := NewCodec("other", 0).Sign(domain.Claims{ID: 1})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewCodec("secret", 0).Verify(signed); !errors.Is(err, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestCodec_TamperedPayload(t *testing.T) {
	codec := NewCodec("secret", 0)
	plain, err := codec.Sign(domain.Claims{ID: 1, Admin: false})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	elevated, err := codec.Sign(domain.Claims{ID: 1, Admin: true})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	p := strings.Split(plain, ".")
	e := strings.Split(elevated, ".")
	forged := p[0] + "." + e[1] + "." + p[2]

	if _, err := codec.Verify(forged); !errors.Is(err, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
}

func TestCodec_Malformed(t *testing.T) {
	codec := NewCodec("secret", 0)
	if _, err := codec.Verify("not-a-token"); !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"id":  1,
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := tkn.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = NewCodec("secret", 0).Verify(signed)
	if err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
	if errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("unexpected expiry error: %v", err)
	}
}

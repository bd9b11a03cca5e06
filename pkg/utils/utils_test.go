package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type sampleRequest struct {
	Name     string   `json:"name" validate:"notblank,max=10"`
	Email    string   `json:"email" validate:"required,email"`
	Seats    []string `json:"seatIds" validate:"required,min=1"`
	Quantity int      `json:"quantity" validate:"min=1"`
}

func TestValidateStruct_ReportsEveryFieldByJSONName(t *testing.T) {
	t.Parallel()

	errs := ValidateStruct(sampleRequest{Name: "   ", Email: "nope"})
	for _, field := range []string{"name", "email", "seatIds", "quantity"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
	if errs["quantity"] != "Must be at least 1" {
		t.Fatalf("expected numeric min message, got %q", errs["quantity"])
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	t.Parallel()

	errs := ValidateStruct(sampleRequest{Name: "Ada", Email: "ada@example.com", Seats: []string{"1-1"}, Quantity: 1})
	if errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	sid, uid := uuid.New(), uuid.New()
	raw, err := NewSessionToken("secret", sid, uid, "admin", time.Now(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := ParseSessionToken("secret", raw, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if claims.SessionID != sid.String() || claims.Subject != uid.String() || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseSessionToken("other-secret", raw, time.Now()); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
}

func TestSessionToken_Expired(t *testing.T) {
	t.Parallel()

	raw, err := NewSessionToken("secret", uuid.New(), uuid.New(), "customer", time.Now().Add(-time.Hour), time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := ParseSessionToken("secret", raw, time.Now()); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestGenerateBookingReference(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ref := GenerateBookingReference(id)
	if !strings.HasPrefix(ref, "BK-") {
		t.Fatalf("expected BK- prefix, got %s", ref)
	}
	if ref != GenerateBookingReference(id) {
		t.Fatalf("expected reference to be deterministic")
	}
	if ref == GenerateBookingReference(uuid.New()) {
		t.Fatalf("expected different ids to yield different references")
	}
}

func TestCalculateTotalPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := CalculateTotalPages(c.total, c.perPage); got != c.want {
			t.Fatalf("CalculateTotalPages(%d, %d) = %d, want %d", c.total, c.perPage, got, c.want)
		}
	}
}

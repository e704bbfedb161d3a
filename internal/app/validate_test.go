package app

import (
	"encoding/json"
	"testing"
)

func TestDecimalProblem(t *testing.T) {
	cases := []struct {
		in, format string
		ok         bool
	}{
		{"100.00", "10:2", true},
		{"100", "10:2", true},
		{"99999999.99", "10:2", true},
		{"100000000", "10:2", false},
		{"1.234", "10:2", false},
		{"4.5", "3:1", true},
		{"4.55", "3:1", false},
		{"100.0", "3:1", false},
		{"abc", "10:2", false},
	}
	for _, c := range cases {
		if got := decimalProblem(c.in, c.format) == ""; got != c.ok {
			t.Errorf("decimalProblem(%q, %q) ok=%v, want %v", c.in, c.format, got, c.ok)
		}
	}
}

func TestValidateCollectsEveryField(t *testing.T) {
	verr := Validate(HotelInput{Email: "not-an-email", PricePerNight: json.Number("1.234")})
	if verr.Empty() {
		t.Fatalf("expected errors")
	}
	for _, f := range []string{"name", "address", "city", "email", "price_per_night"} {
		if len(verr.Fields[f]) == 0 {
			t.Errorf("missing error for %s: %v", f, verr.Fields)
		}
	}
}

func TestTextAcceptsNumbers(t *testing.T) {
	var in RoomInput
	if err := json.Unmarshal([]byte(`{"room_number": 101, "capacity": "2 adultes"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.RoomNumber != "101" || in.Capacity != "2 adultes" {
		t.Fatalf("unexpected: %+v", in)
	}
}

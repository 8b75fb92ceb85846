package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestJSONToMetadata(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantNil   bool
		expectErr bool
	}{
		{name: "empty payload reads as nil", raw: "", wantNil: true},
		{name: "empty object reads as nil", raw: "{}", wantNil: true},
		{name: "populated object", raw: `{"source":"import"}`},
		{name: "corrupt payload surfaces an error", raw: `{"source":`, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata, err := jsonToMetadata([]byte(tt.raw))

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantNil != (metadata == nil) {
				t.Errorf("expected nil=%v, got %v", tt.wantNil, metadata)
			}

			if !tt.wantNil && metadata["source"] != "import" {
				t.Errorf("unexpected metadata %v", metadata)
			}
		})
	}
}

func TestNumericDecimalRoundTrip(t *testing.T) {
	for _, raw := range []string{"0", "100.5", "-3.14", "0.00000001"} {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			t.Fatalf("bad fixture %q: %v", raw, err)
		}

		got := numericToDecimal(decimalToNumeric(d))
		if !got.Equal(d) {
			t.Errorf("round trip of %s produced %s", raw, got)
		}
	}
}

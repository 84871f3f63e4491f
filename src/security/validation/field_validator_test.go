package validation

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestValidateStockSymbol(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"nabil", "NABIL", false},
		{"  NIMB ", "NIMB", false},
		{"NIFRA-PO", "NIFRA-PO", false},
		{"", "", true},
		{"NA BIL", "", true},
		{"<script>", "", true},
		{strings.Repeat("A", MaxSymbolLength+1), "", true},
	}
	for _, tt := range tests {
		got, err := ValidateStockSymbol(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStockSymbol(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidateStockSymbol(%q) error does not wrap ErrValidationFailed", tt.in)
		}
		if got != tt.want {
			t.Errorf("ValidateStockSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateQuantity(t *testing.T) {
	good := map[float64]int64{1: 1, 10: 10, 2500: 2500}
	for in, want := range good {
		got, err := ValidateQuantity(in, "quantity")
		if err != nil || got != want {
			t.Errorf("ValidateQuantity(%v) = (%d, %v), want %d", in, got, err, want)
		}
	}
	for _, in := range []float64{0, -3, 1.5, math.NaN(), math.Inf(1), 1e12} {
		if _, err := ValidateQuantity(in, "quantity"); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidateQuantity(%v) expected validation error, got %v", in, err)
		}
	}
}

func TestValidatePositiveFloat(t *testing.T) {
	if err := ValidatePositiveFloat(0.01, "price"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	for _, in := range []float64{0, -1, math.NaN(), math.Inf(-1)} {
		if err := ValidatePositiveFloat(in, "price"); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidatePositiveFloat(%v) expected validation error, got %v", in, err)
		}
	}
	if err := ValidateNonNegativeFloat(0, "initial_balance"); err != nil {
		t.Errorf("zero balance should be allowed: %v", err)
	}
}

func TestValidateDateString(t *testing.T) {
	if _, err := ValidateDateString("2024-02-29", "date"); err != nil {
		t.Errorf("leap day rejected: %v", err)
	}
	for _, in := range []string{"", "2023-02-29", "15-01-2024", "2024/01/15", "yesterday"} {
		if _, err := ValidateDateString(in, "date"); !errors.Is(err, ErrValidationFailed) {
			t.Errorf("ValidateDateString(%q) expected validation error, got %v", in, err)
		}
	}
}

func TestValidateEnumerations(t *testing.T) {
	if got, err := ValidateTransactionType("sell"); err != nil || got != "Sell" {
		t.Errorf("ValidateTransactionType(sell) = (%q, %v)", got, err)
	}
	if _, err := ValidateTransactionType("transfer"); err == nil {
		t.Error("expected error for unknown transaction type")
	}
	if got, err := ValidateDividendType("cash"); err != nil || got != "cash" {
		t.Errorf("ValidateDividendType(cash) = (%q, %v), want value kept as sent", got, err)
	}
	if _, err := ValidateDividendType("stock split"); err == nil {
		t.Error("expected error for unknown dividend type")
	}
	if got, err := ValidateDemoSide("buy"); err != nil || got != "BUY" {
		t.Errorf("ValidateDemoSide(buy) = (%q, %v)", got, err)
	}
	if _, err := ValidateDemoSide("short"); err == nil {
		t.Error("expected error for unknown side")
	}
}

func TestValidateEmailAndPassword(t *testing.T) {
	if got, err := ValidateEmail(" Alice@Example.com "); err != nil || got != "alice@example.com" {
		t.Errorf("ValidateEmail = (%q, %v)", got, err)
	}
	for _, in := range []string{"", "alice", "Alice <alice@example.com>"} {
		if _, err := ValidateEmail(in); err == nil {
			t.Errorf("ValidateEmail(%q) expected error", in)
		}
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword("long enough password"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePortfolioName(t *testing.T) {
	if got, err := ValidatePortfolioName("  <b>Core</b> "); err != nil || got != "Core" {
		t.Errorf("ValidatePortfolioName = (%q, %v)", got, err)
	}
	if _, err := ValidatePortfolioName("   "); err == nil {
		t.Error("expected error for blank name")
	}
	for _, in := range []string{"Tom's A&B", `Growth "2024"`, "Fees < 1%"} {
		if got, err := ValidatePortfolioName(in); err != nil || got != in {
			t.Errorf("ValidatePortfolioName(%q) = (%q, %v), want the name unchanged", in, got, err)
		}
	}
	if _, err := ValidatePortfolioName("&lt;script&gt;alert(1)&lt;/script&gt;"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("entity-encoded script: expected validation error, got %v", err)
	}
}

func TestCleanOptionalText(t *testing.T) {
	got, err := CleanOptionalText(nil, 10, "notes")
	if err != nil || got != nil {
		t.Errorf("nil input = (%v, %v)", got, err)
	}

	in := "  <b>buy</b> the dip  "
	got, err = CleanOptionalText(&in, 100, "notes")
	if err != nil || got == nil || *got != "buy the dip" {
		t.Errorf("CleanOptionalText = (%v, %v)", got, err)
	}

	plain := "Tom's A&B <3"
	if got, err := CleanOptionalText(&plain, 100, "notes"); err != nil || got == nil || *got != plain {
		t.Errorf("CleanOptionalText(%q) = (%v, %v), want text unchanged", plain, got, err)
	}

	blank := "   "
	if got, _ := CleanOptionalText(&blank, 100, "notes"); got != nil {
		t.Errorf("blank input should become nil, got %q", *got)
	}

	script := `<script>alert(1)</script>`
	if _, err := CleanOptionalText(&script, 100, "notes"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("script content: expected validation error, got %v", err)
	}

	long := strings.Repeat("x", 11)
	if _, err := CleanOptionalText(&long, 10, "notes"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("long content: expected validation error, got %v", err)
	}
}

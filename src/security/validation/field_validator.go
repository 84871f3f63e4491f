package validation

import (
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/nepsefolio/backend/src/models"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxSymbolLength        = 20
	MaxPortfolioNameLength = 100
	MaxDescriptionLength   = 1024
	MaxNotesLength         = 1024
	MinPasswordLength      = 8
	MaxPasswordLength      = 72 // bcrypt ignores anything longer
	DateLayout             = "2006-01-02"
)

// NEPSE symbols are upper-case letters and digits, occasionally with a trailing
// segment such as NIFRA-PO.
var symbolRegex = regexp.MustCompile(`^[A-Z0-9]+(?:[-.][A-Z0-9]+)*$`)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

func ValidateStringRegex(s string, pattern *regexp.Regexp, fieldName, formatDescription string) error {
	if !pattern.MatchString(s) {
		return fmt.Errorf("%w: %s ('%s') is not in the expected format (%s)", ErrValidationFailed, fieldName, s, formatDescription)
	}
	return nil
}

// ValidateStockSymbol trims and upper-cases s and checks its format.
// It returns the normalized symbol.
func ValidateStockSymbol(s string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(s))
	if err := ValidateStringNotEmpty(sym, "stock_symbol"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(sym, MaxSymbolLength, "stock_symbol"); err != nil {
		return "", err
	}
	if err := ValidateStringRegex(sym, symbolRegex, "stock_symbol", "letters and digits"); err != nil {
		return "", err
	}
	return sym, nil
}

func ValidatePortfolioName(s string) (string, error) {
	name := strings.TrimSpace(SanitizeText(s))
	if err := ValidateStringNotEmpty(name, "name"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(name, MaxPortfolioNameLength, "name"); err != nil {
		return "", err
	}
	if err := CheckXSSPatterns(name, "name"); err != nil {
		return "", err
	}
	return name, nil
}

func ValidateEmail(s string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(s))
	if err := ValidateStringNotEmpty(email, "email"); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(email, DefaultMaxStringLength, "email"); err != nil {
		return "", err
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email ('%s') is not a valid address", ErrValidationFailed, s)
	}
	return email, nil
}

func ValidatePassword(s string) error {
	if len(s) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidationFailed, MinPasswordLength)
	}
	if len(s) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidationFailed, MaxPasswordLength)
	}
	return nil
}

// --- Numeric Validators ---

// ValidatePositiveFloat rejects NaN, infinities, zero and negative values.
func ValidatePositiveFloat(v float64, fieldName string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrValidationFailed, fieldName)
	}
	if v <= 0 {
		return fmt.Errorf("%w: %s must be greater than zero", ErrValidationFailed, fieldName)
	}
	return nil
}

func ValidateNonNegativeFloat(v float64, fieldName string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrValidationFailed, fieldName)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateQuantity checks that v is a positive whole number of shares and
// returns it as an integer.
func ValidateQuantity(v float64, fieldName string) (int64, error) {
	if err := ValidatePositiveFloat(v, fieldName); err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s must be a whole number", ErrValidationFailed, fieldName)
	}
	if v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s is too large", ErrValidationFailed, fieldName)
	}
	return int64(v), nil
}

func ValidateShareCount(v int64, fieldName string) error {
	if v < 0 {
		return fmt.Errorf("%w: %s cannot be negative", ErrValidationFailed, fieldName)
	}
	return nil
}

// --- Date Validator ---

// ValidateDateString checks that s is a real calendar date in YYYY-MM-DD form.
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// --- Enumerations ---

// ValidateTransactionType accepts Buy or Sell in any case and returns the canonical spelling.
func ValidateTransactionType(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return models.TransactionBuy, nil
	case "sell":
		return models.TransactionSell, nil
	}
	return "", fmt.Errorf("%w: transaction_type must be Buy or Sell", ErrValidationFailed)
}

// ValidateDividendType accepts Cash, Bonus or Right in any case. The value is
// returned as sent so that stored rows keep the caller's spelling.
func ValidateDividendType(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	for _, t := range []string{models.DividendCash, models.DividendBonus, models.DividendRight} {
		if strings.EqualFold(trimmed, t) {
			return trimmed, nil
		}
	}
	return "", fmt.Errorf("%w: type must be one of Cash, Bonus, Right", ErrValidationFailed)
}

func ValidateDemoSide(s string) (string, error) {
	side := strings.ToUpper(strings.TrimSpace(s))
	if side != models.DemoSideBuy && side != models.DemoSideSell {
		return "", fmt.Errorf("%w: side must be BUY or SELL", ErrValidationFailed)
	}
	return side, nil
}

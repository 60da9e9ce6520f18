// Package checkout holds the pure validation and formatting rules applied to
// a checkout, both while the buyer fills in the form and again at intake.
package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 16
	// TransactionRefLen is the length of a UPI transaction reference (UTR).
	TransactionRefLen = 12
)

var ErrInvalidInput = errors.New("invalid input")

// ValidationError is a malformed-input failure. The caller fixes the input
// and resubmits.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

var (
	collectedUsername = regexp.MustCompile(`^[A-Za-z0-9_ ]+$`)
	submittedUsername = regexp.MustCompile(`^\.?[A-Za-z0-9_]{3,16}$`)
	transactionRef    = regexp.MustCompile(`^\d{12}$`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

const (
	MsgUsernameRequired = "Minecraft username is required"
	MsgUsernameTooShort = "Username must be at least 3 characters"
	MsgUsernameTooLong  = "Username must be at most 16 characters"
	MsgUsernameChars    = "Username can only contain letters, numbers, and underscores"
	MsgEditionInvalid   = "Edition must be either java or bedrock"
	MsgTxnRefInvalid    = "Transaction ID must be exactly 12 digits"
	MsgCartEmpty        = "Cart is empty"
)

// ValidateUsername applies the collection-stage rule to raw form input.
// Spaces are allowed here because bedrock formatting rewrites them.
func ValidateUsername(raw string) error {
	name := strings.TrimSpace(raw)
	if err := checkLength(name); err != nil {
		return err
	}
	if !collectedUsername.MatchString(name) {
		return invalid("minecraftUsername", "Username can only contain letters, numbers, underscores, and spaces")
	}
	return nil
}

// ValidateSubmittedUsername applies the strict rule to an already formatted
// username. Length is measured without the bedrock dot prefix.
func ValidateSubmittedUsername(formatted string) error {
	if err := checkLength(strings.TrimPrefix(formatted, ".")); err != nil {
		return err
	}
	if !submittedUsername.MatchString(formatted) {
		return invalid("minecraftUsername", MsgUsernameChars)
	}
	return nil
}

func checkLength(name string) error {
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return invalid("minecraftUsername", MsgUsernameRequired)
	case n < UsernameMinLen:
		return invalid("minecraftUsername", MsgUsernameTooShort)
	case n > UsernameMaxLen:
		return invalid("minecraftUsername", MsgUsernameTooLong)
	}
	return nil
}

// FormatUsername derives the submitted username from raw input. Bedrock
// names get a leading dot and underscores in place of whitespace; java
// names are only trimmed.
func FormatUsername(raw string, edition domain.Edition) string {
	name := strings.TrimSpace(raw)
	if edition != domain.EditionBedrock {
		return name
	}
	name = whitespaceRun.ReplaceAllString(name, "_")
	if !strings.HasPrefix(name, ".") {
		name = "." + name
	}
	return name
}

func ValidateEdition(edition domain.Edition) error {
	if !edition.Valid() {
		return invalid("edition", MsgEditionInvalid)
	}
	return nil
}

// NormalizeTransactionRef keeps the digits of raw input, capped at 12.
// It is a display helper; intake only accepts exact 12-digit values.
func NormalizeTransactionRef(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == TransactionRefLen {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidateTransactionRef(ref string) error {
	if !transactionRef.MatchString(ref) {
		return invalid("transactionReference", MsgTxnRefInvalid)
	}
	return nil
}

// Line is a requested (product, quantity) pair as submitted by the client.
type Line struct {
	ProductID string
	Quantity  int
}

// ValidateLines checks cart well-formedness. Whether each product exists is
// decided against the catalog at intake.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return invalid("items", MsgCartEmpty)
	}
	for _, l := range lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return invalid("items", "Every item must reference a product")
		}
		if err := ValidateQuantity(l.ProductID, l.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func ValidateQuantity(productID string, qty int) error {
	if qty < 1 {
		return invalid("items", fmt.Sprintf("Invalid quantity for product %s", productID))
	}
	return nil
}

// Submission is a checkout as received at intake.
type Submission struct {
	MinecraftUsername    string
	Edition              domain.Edition
	TransactionReference string
	Lines                []Line
}

// Prepare re-runs the username, edition and transaction reference rules on
// the server side and returns the formatted username. Client-side
// formatting is never trusted: the raw value is formatted again here.
// All username rules run before the edition check.
func Prepare(s Submission) (string, error) {
	if strings.TrimSpace(s.MinecraftUsername) == "" {
		return "", invalid("minecraftUsername", MsgUsernameRequired)
	}
	// A bedrock buyer may already have typed the dot.
	if err := ValidateUsername(strings.TrimPrefix(strings.TrimSpace(s.MinecraftUsername), ".")); err != nil {
		return "", err
	}
	if err := ValidateEdition(s.Edition); err != nil {
		return "", err
	}
	formatted := FormatUsername(s.MinecraftUsername, s.Edition)
	if err := ValidateSubmittedUsername(formatted); err != nil {
		return "", err
	}
	if err := ValidateTransactionRef(s.TransactionReference); err != nil {
		return "", err
	}
	if len(s.Lines) == 0 {
		return "", invalid("items", MsgCartEmpty)
	}
	return formatted, nil
}

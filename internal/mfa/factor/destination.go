package factor

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/nexosupport/nexomfa/internal/mfa/domain"
)

var e164 = regexp.MustCompile(`^\+\d{7,15}$`)

// NormalizePhone reduces a phone number to E.164: a leading "+" and 7 to 15
// digits. Spaces, dashes, dots and parentheses are dropped and a "00"
// international prefix becomes "+".
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch r {
		case ' ', '-', '.', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	phone := b.String()
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	if !e164.MatchString(phone) {
		return "", ErrInvalidDestination
	}
	return phone, nil
}

// MaskPhone keeps the "+", the first two and last two digits.
func MaskPhone(phone string) string {
	if len(phone) < 6 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + strings.Repeat("*", len(phone)-5) + phone[len(phone)-2:]
}

// NormalizeEmail validates a bare address and lower-cases the domain.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw || addr.Name != "" {
		return "", ErrInvalidDestination
	}
	at := strings.LastIndexByte(raw, '@')
	if at <= 0 || !strings.Contains(raw[at+1:], ".") {
		return "", ErrInvalidDestination
	}
	return raw[:at] + "@" + strings.ToLower(raw[at+1:]), nil
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return strings.Repeat("*", len(email))
	}
	return email[:1] + "***" + email[at:]
}

// MaskDestination masks an enrollment secret for display. Secrets of
// factors without a displayable destination are never shown.
func MaskDestination(factorName, secret string) string {
	switch factorName {
	case domain.FactorSMS:
		return MaskPhone(secret)
	case domain.FactorEmail:
		return MaskEmail(secret)
	default:
		return ""
	}
}

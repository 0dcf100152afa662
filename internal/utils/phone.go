package utils

import "strings"

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone converts a raw phone into E.164 where possible. A bare
// 10-digit number is assumed to be an Indian mobile and prefixed with +91.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	digits := digitsOnly(trimmed)
	switch {
	case digits == "":
		return trimmed
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits
	case strings.HasPrefix(trimmed, "+"):
		return trimmed
	default:
		return "+" + digits
	}
}

// WhatsAppNumber formats a phone for the Twilio WhatsApp channel
// ("whatsapp:+91..."). Returns "" when no usable number remains.
func WhatsAppNumber(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "whatsapp:") {
		return trimmed
	}
	normalized := NormalizePhone(trimmed)
	if normalized == "" || digitsOnly(normalized) == "" {
		return ""
	}
	return "whatsapp:" + normalized
}

// MaskPhone hides all but the last two digits for user-facing responses.
func MaskPhone(phone string) string {
	digits := digitsOnly(phone)
	if len(digits) < 4 {
		return "****"
	}
	return "*******" + digits[len(digits)-2:]
}

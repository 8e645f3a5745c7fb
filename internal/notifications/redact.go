package notifications

import "strings"

// RedactEmail masks an address for logging. "john@gmail.com" becomes
// "j***@gmail.com"; input without an "@" is masked entirely.
func RedactEmail(email string) string {
	if email == "" {
		return ""
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) == 0 {
		return "***@" + domain
	}
	return string(local[0]) + "***@" + domain
}

// RedactAll applies RedactEmail to every address.
func RedactAll(emails []string) []string {
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = RedactEmail(e)
	}
	return out
}

package service

import "strings"

// CanonicalizeEmail reduces an address to the form stored in the
// canonical_email unique key, so two spellings of one mailbox cannot
// register twice. The whole address is trimmed and lowercased; for
// Gmail-hosted mailboxes the local part additionally loses its dots and
// any +suffix, since Gmail ignores both when routing.
func CanonicalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}

	if domain == "gmail.com" || domain == "googlemail.com" {
		local, _, _ = strings.Cut(local, "+")
		local = strings.ReplaceAll(local, ".", "")
	}

	return local + "@" + domain
}

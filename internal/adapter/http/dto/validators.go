package dto

import "regexp"

// slugRe matches the organization slugs the platform provisions:
// lowercase alphanumeric segments joined by single dashes.
var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidOrgSlug reports whether s is a well-formed organization slug.
// Webhook routes reject anything else before touching the store.
func ValidOrgSlug(s string) bool {
	return len(s) <= 64 && slugRe.MatchString(s)
}

package steem

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// fallbackSlug is used when a title contains no slug-safe characters at all
// (e.g. a fully non-Latin title).
const fallbackSlug = "post"

var nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)

// GeneratePermlink derives a unique, URL-safe permlink from a post title:
// the slugified title plus a unix-timestamp and short random suffix. The
// result always matches ^[a-z0-9-]+$ and never exceeds MaxPermlinkLength;
// when clamping is needed the slug is truncated, never the suffix.
func GeneratePermlink(title string, now time.Time) string {
	slug := nonSlugRunes.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = fallbackSlug
	}

	token := uuid.New()
	suffix := fmt.Sprintf("-%d-%s", now.Unix(), hex.EncodeToString(token[:])[:6])

	if len(slug)+len(suffix) > MaxPermlinkLength {
		slug = strings.TrimRight(slug[:MaxPermlinkLength-len(suffix)], "-")
	}

	return slug + suffix
}

package steem

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Metadata is the structured side-channel data attached to a post as
// json_metadata. Tags always mirror the request's tag list exactly, in order.
type Metadata struct {
	Tags      []string `json:"tags"`
	App       string   `json:"app"`
	Format    string   `json:"format"`
	Community string   `json:"community,omitempty"`
	Image     []string `json:"image,omitempty"`
	Links     []string `json:"links,omitempty"`
	Users     []string `json:"users,omitempty"`
}

var (
	markdownImage = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^\s)]+)\)`)
	markdownLink  = regexp.MustCompile(`(?:^|[^!])\[[^\]]*\]\((https?://[^\s)]+)\)`)
	userMention   = regexp.MustCompile(`(?:^|[^\w/])@([a-z][a-z0-9.-]{1,14}[a-z0-9])`)
)

// BuildMetadata assembles the post metadata and its serialized form. Image,
// link and user hints are extracted from the markdown body, mirroring what
// the Steemit frontend indexes. Returns a SerializationError when the
// serialized form would exceed the chain limit.
func BuildMetadata(tags []string, community, body string) (*Metadata, string, error) {
	m := &Metadata{
		Tags:      tags,
		App:       AppName,
		Format:    ContentFormat,
		Community: community,
		Image:     extractSubmatches(markdownImage, body),
		Links:     extractSubmatches(markdownLink, body),
		Users:     extractUsers(body),
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, "", err
	}
	if len(raw) > MaxJSONMetadataBytes {
		return nil, "", &SerializationError{Field: "json_metadata", Size: len(raw), Limit: MaxJSONMetadataBytes}
	}
	return m, string(raw), nil
}

func extractSubmatches(re *regexp.Regexp, body string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, match := range re.FindAllStringSubmatch(body, -1) {
		url := match[1]
		if !seen[url] {
			seen[url] = true
			out = append(out, url)
		}
	}
	return out
}

func extractUsers(body string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, match := range userMention.FindAllStringSubmatch(strings.ToLower(body), -1) {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

package steem

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBuildMetadata_Defaults(t *testing.T) {
	m, raw, err := BuildMetadata([]string{"steemit", "test"}, "", "plain body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.Tags) != 2 || m.Tags[0] != "steemit" || m.Tags[1] != "test" {
		t.Fatalf("tags must mirror the request in order, got %v", m.Tags)
	}
	if m.App != "steemit-api/1.0" {
		t.Fatalf("unexpected app identity %q", m.App)
	}
	if m.Format != "markdown" {
		t.Fatalf("unexpected format %q", m.Format)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if _, ok := decoded["community"]; ok {
		t.Fatalf("empty community must be omitted from metadata")
	}
}

func TestBuildMetadata_Community(t *testing.T) {
	m, _, err := BuildMetadata([]string{"steemit"}, "hive-193186", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Community != "hive-193186" {
		t.Fatalf("expected community passthrough, got %q", m.Community)
	}
}

func TestBuildMetadata_ExtractsImagesLinksUsers(t *testing.T) {
	body := `Intro with ![pic](https://img.example.com/a.png) and
[docs](https://example.com/docs) plus a mention of @alice and @bob.
Repeat: ![pic](https://img.example.com/a.png) and @alice again.`

	m, _, err := BuildMetadata([]string{"steemit"}, "", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.Image) != 1 || m.Image[0] != "https://img.example.com/a.png" {
		t.Fatalf("expected one deduplicated image, got %v", m.Image)
	}
	if len(m.Links) != 1 || m.Links[0] != "https://example.com/docs" {
		t.Fatalf("image URLs must not appear as links, got %v", m.Links)
	}
	if len(m.Users) != 2 || m.Users[0] != "alice" || m.Users[1] != "bob" {
		t.Fatalf("expected deduplicated mentions in order, got %v", m.Users)
	}
}

func TestBuildMetadata_LinkAtLineStart(t *testing.T) {
	m, _, err := BuildMetadata([]string{"steemit"}, "", "[start](https://example.com/start)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Links) != 1 {
		t.Fatalf("link at string start not extracted: %v", m.Links)
	}
}

func TestBuildMetadata_SizeLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 3000; i++ {
		fmt.Fprintf(&sb, "[l](https://example.com/page/%d/abcdefghij) ", i)
	}

	_, _, err := BuildMetadata([]string{"steemit"}, "", sb.String())
	if err == nil {
		t.Fatalf("expected size limit error")
	}
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SerializationError, got %T", err)
	}
	if serr.Limit != MaxJSONMetadataBytes {
		t.Fatalf("unexpected limit %d", serr.Limit)
	}
}

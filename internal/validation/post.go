// Package validation enforces the chain's size and format limits on publish
// requests before any network call is made. All checks are pure functions of
// their input; byte limits apply to the UTF-8 encoded length.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ismdrobiul489-sudo/steemit-posting/internal/steem"
)

// Error names the first violated rule. Validation is fail-fast: checks run in
// a fixed order and the first failure wins.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	tagPattern       = regexp.MustCompile(`^[a-z0-9-]+$`)
	accountPattern   = regexp.MustCompile(`^[a-z][a-z0-9.-]*[a-z0-9]$`)
	communityPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// PostValidator validates publish requests against the on-chain limits.
type PostValidator struct {
	validate *validator.Validate
}

// NewPostValidator constructs a PostValidator.
func NewPostValidator() *PostValidator {
	return &PostValidator{
		validate: validator.New(),
	}
}

// ValidatePost applies the limit checks in order: title, body, tag count,
// individual tags, beneficiaries, community. Returns nil or the first
// violation as an *Error.
func (v *PostValidator) ValidatePost(title, body string, tags []string, community string, beneficiaries []steem.Beneficiary) error {
	if strings.TrimSpace(title) == "" {
		return &Error{Field: "title", Message: "title is required"}
	}
	if len(title) > steem.MaxTitleBytes {
		return &Error{Field: "title", Message: fmt.Sprintf("title is %d bytes, limit is %d", len(title), steem.MaxTitleBytes)}
	}

	if strings.TrimSpace(body) == "" {
		return &Error{Field: "body", Message: "body is required"}
	}
	if len(body) > steem.MaxBodyBytes {
		return &Error{Field: "body", Message: fmt.Sprintf("body is %d bytes, limit is %d", len(body), steem.MaxBodyBytes)}
	}

	if err := v.validate.Var(tags, fmt.Sprintf("min=1,max=%d", steem.MaxTags)); err != nil {
		return &Error{Field: "tags", Message: fmt.Sprintf("between 1 and %d tags required, got %d", steem.MaxTags, len(tags))}
	}
	for _, tag := range tags {
		if !tagPattern.MatchString(tag) {
			return &Error{Field: "tags", Message: fmt.Sprintf("tag %q must match %s", tag, tagPattern)}
		}
		if err := v.validate.Var(tag, fmt.Sprintf("max=%d", steem.MaxTagLength)); err != nil {
			return &Error{Field: "tags", Message: fmt.Sprintf("tag %q exceeds %d characters", tag, steem.MaxTagLength)}
		}
	}

	weightSum := 0
	for _, b := range beneficiaries {
		if err := v.validate.Var(b.Account, "min=3,max=16"); err != nil || !accountPattern.MatchString(b.Account) {
			return &Error{Field: "beneficiaries", Message: fmt.Sprintf("%q is not a valid account name", b.Account)}
		}
		if b.Weight > steem.MaxBeneficiaryWeight {
			return &Error{Field: "beneficiaries", Message: fmt.Sprintf("weight %d exceeds %d", b.Weight, steem.MaxBeneficiaryWeight)}
		}
		weightSum += int(b.Weight)
	}
	if weightSum > steem.MaxBeneficiaryWeight {
		return &Error{Field: "beneficiaries", Message: fmt.Sprintf("weights sum to %d, limit is %d", weightSum, steem.MaxBeneficiaryWeight)}
	}

	if community != "" && !communityPattern.MatchString(community) {
		return &Error{Field: "community", Message: fmt.Sprintf("community %q must match %s", community, communityPattern)}
	}

	return nil
}

package handlers

// PostRequest is the JSON body accepted by the publish endpoint. Tags default
// to ["steemit"] when absent; everything else is passed through as-is.
type PostRequest struct {
	Title         string               `json:"title"`
	Body          string               `json:"body"`
	Tags          []string             `json:"tags"`
	Community     string               `json:"community"`
	SelfVote      bool                 `json:"self_vote"`
	Beneficiaries []BeneficiaryRequest `json:"beneficiaries"`
}

// BeneficiaryRequest assigns a share of the post rewards to another account.
// Weight is in basis points of the total payout.
type BeneficiaryRequest struct {
	Account string `json:"account"`
	Weight  uint16 `json:"weight"`
}

// PostResponse is returned when the post was accepted by the chain.
type PostResponse struct {
	Success  bool     `json:"success"`
	Author   string   `json:"author"`
	Permlink string   `json:"permlink"`
	URL      string   `json:"url"`
	Tags     []string `json:"tags"`
}

// ErrorResponse is the uniform failure shape for all endpoints.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Package publisher orchestrates the publish pipeline: validate, derive
// permlink and metadata, fetch chain reference data, build, sign, broadcast.
// Every stage failure is mapped into a single PublishResult value; no error
// escapes the service boundary.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ismdrobiul489-sudo/steemit-posting/internal/clients/steemd"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/logging"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/steem"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/validation"
)

// Stable error kinds reported to callers. The HTTP front door maps these to
// status codes.
const (
	KindValidation       = "validation_error"
	KindBuild            = "build_error"
	KindSigning          = "signing_error"
	KindChainRejection   = "chain_rejection"
	KindNodesUnavailable = "nodes_unavailable"
)

// Request is a publish request after JSON decoding and defaulting.
type Request struct {
	Title         string
	Body          string
	Tags          []string
	Community     string
	SelfVote      bool
	Beneficiaries []steem.Beneficiary
}

// Result is the single outcome of a publish request, success or failure.
type Result struct {
	Success   bool
	Author    string
	Permlink  string
	URL       string
	Tags      []string
	ErrorKind string
	Message   string
}

// Metrics holds the publisher's custom Prometheus instruments. A nil Metrics
// disables recording.
type Metrics struct {
	Operations *prometheus.CounterVec   // labels: status, error_kind
	Duration   *prometheus.HistogramVec // labels: status
}

// Publisher runs the pipeline for one author identity against a node client.
// It is safe for concurrent use: all per-request state lives on the stack.
type Publisher struct {
	author     string
	postingKey string
	node       *steemd.Client
	validator  *validation.PostValidator
	logger     logging.Logger
	metrics    *Metrics
	now        func() time.Time
}

// New constructs a Publisher.
func New(author, postingKey string, node *steemd.Client, logger logging.Logger, metrics *Metrics) *Publisher {
	return &Publisher{
		author:     author,
		postingKey: postingKey,
		node:       node,
		validator:  validation.NewPostValidator(),
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Publish runs the pipeline strictly in sequence and short-circuits on the
// first failing stage.
func (p *Publisher) Publish(ctx context.Context, req Request) Result {
	start := p.now()
	result := p.publish(ctx, req)
	p.record(result, p.now().Sub(start))
	return result
}

func (p *Publisher) publish(ctx context.Context, req Request) Result {
	if err := p.validator.ValidatePost(req.Title, req.Body, req.Tags, req.Community, req.Beneficiaries); err != nil {
		return p.fail(KindValidation, err.Error())
	}

	// Decode the credential up front so a malformed key never reaches a node.
	key, err := steem.DecodePostingKey(p.postingKey)
	if err != nil {
		return p.fail(KindSigning, "posting key is malformed")
	}

	permlink := steem.GeneratePermlink(req.Title, p.now())

	_, metadataJSON, err := steem.BuildMetadata(req.Tags, req.Community, req.Body)
	if err != nil {
		return p.fail(KindBuild, err.Error())
	}

	props, err := p.node.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return p.failNetwork(err)
	}
	ref, err := steem.NewChainRef(props.HeadBlockNumber, props.HeadBlockID)
	if err != nil {
		return p.fail(KindBuild, err.Error())
	}

	category := req.Community
	if category == "" {
		category = req.Tags[0]
	}
	tx, err := steem.BuildTransaction(steem.PostParams{
		Author:        p.author,
		Permlink:      permlink,
		Title:         req.Title,
		Body:          req.Body,
		JSONMetadata:  metadataJSON,
		Category:      category,
		Beneficiaries: req.Beneficiaries,
		SelfVote:      req.SelfVote,
	}, ref, p.now())
	if err != nil {
		return p.fail(KindBuild, err.Error())
	}

	signed, err := steem.Sign(tx, key)
	if err != nil {
		return p.fail(KindSigning, "could not sign transaction")
	}

	ack, err := p.node.BroadcastTransactionSynchronous(ctx, signed)
	if err != nil {
		return p.failNetwork(err)
	}

	txID := ack.ID
	if txID == "" {
		txID, _ = tx.ID()
	}
	p.logger.WithFields(logging.Fields{
		"author":    p.author,
		"permlink":  permlink,
		"tags":      req.Tags,
		"tx_id":     txID,
		"block_num": ack.BlockNum,
	}).Info("Post published")

	return Result{
		Success:  true,
		Author:   p.author,
		Permlink: permlink,
		URL:      fmt.Sprintf("%s/@%s/%s", steem.SiteURL, p.author, permlink),
		Tags:     req.Tags,
	}
}

// failNetwork maps node-layer errors onto the taxonomy: a relayed chain
// rejection is deterministic and reported as such; anything else means every
// endpoint was exhausted. Messages stay generic so infrastructure topology
// never leaks to callers.
func (p *Publisher) failNetwork(err error) Result {
	var rpcErr *steemd.RPCError
	if errors.As(err, &rpcErr) {
		return p.fail(KindChainRejection, fmt.Sprintf("the network rejected the post: %s", rpcErr.Message))
	}

	var unavailable *steemd.NodesUnavailableError
	if errors.As(err, &unavailable) {
		p.logger.WithFields(logging.Fields{
			"reasons": unavailable.Reasons(),
		}).Error("All nodes unavailable")
		return p.fail(KindNodesUnavailable, "all nodes are currently unreachable, try again later")
	}

	return p.fail(KindNodesUnavailable, "network error, try again later")
}

func (p *Publisher) fail(kind, message string) Result {
	p.logger.WithFields(logging.Fields{
		"error_kind": kind,
		"message":    message,
	}).Warn("Publish failed")
	return Result{Success: false, ErrorKind: kind, Message: message}
}

func (p *Publisher) record(result Result, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if !result.Success {
		status = "failure"
	}
	if p.metrics.Operations != nil {
		p.metrics.Operations.WithLabelValues(status, result.ErrorKind).Inc()
	}
	if p.metrics.Duration != nil {
		p.metrics.Duration.WithLabelValues(status).Observe(elapsed.Seconds())
	}
}

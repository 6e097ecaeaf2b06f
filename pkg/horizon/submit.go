package horizon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
)

// ResultCodes are the result codes of a rejected transaction, verbatim.
type ResultCodes struct {
	Transaction      string   `json:"transaction"                 yaml:"transaction"`
	InnerTransaction string   `json:"inner_transaction,omitempty" yaml:"inner_transaction,omitempty"`
	Operations       []string `json:"operations,omitempty"        yaml:"operations,omitempty"`
}

// SubmissionFailure describes a transaction the service rejected.
type SubmissionFailure struct {
	Problem     Problem     `json:"problem"      yaml:"problem"`
	ResultCodes ResultCodes `json:"result_codes" yaml:"result_codes"`
	EnvelopeXDR string      `json:"envelope_xdr" yaml:"envelope_xdr"`
	ResultXDR   string      `json:"result_xdr"   yaml:"result_xdr"`
	RateLimit   RateLimit   `json:"-"            yaml:"-"`
}

// SubmissionResult is the outcome of Submit. Exactly one of Transaction and
// Failure is set.
type SubmissionResult struct {
	Transaction *Transaction       `json:"transaction,omitempty" yaml:"transaction,omitempty"`
	Failure     *SubmissionFailure `json:"failure,omitempty"     yaml:"failure,omitempty"`
	RateLimit   RateLimit          `json:"-"                     yaml:"-"`
}

// Successful reports whether the transaction was applied.
func (r *SubmissionResult) Successful() bool {
	return r.Transaction != nil && r.Failure == nil
}

type submissionExtras struct {
	EnvelopeXDR string       `json:"envelope_xdr"`
	ResultXDR   string       `json:"result_xdr"`
	ResultCodes *ResultCodes `json:"result_codes"`
}

// Submit posts a signed, base64-encoded transaction envelope. A rejection
// carrying result codes is returned as a SubmissionResult with Failure set;
// every other failure is a ServiceError.
func Submit(ctx context.Context, exec Executor, envelopeXDR string) (*SubmissionResult, error) {
	envelopeXDR = strings.TrimSpace(envelopeXDR)
	if envelopeXDR == "" {
		return nil, ErrEnvelopeRequired
	}

	target := exec.BaseURL().JoinPath("transactions")

	header := http.Header{}
	header.Set("Accept", constants.ContentTypeJSON)
	header.Set("Content-Type", constants.ContentTypeForm)

	raw, err := exec.Transport().Send(ctx, &TransportRequest{
		Method: http.MethodPost,
		URL:    target.String(),
		Header: header,
		Body:   []byte(url.Values{"tx": {envelopeXDR}}.Encode()),
	})
	if err != nil {
		return nil, fmt.Errorf("submitting transaction: %w", transportError(err))
	}

	return DecodeSubmission(raw)
}

// DecodeSubmission decodes the response to a transaction submission.
func DecodeSubmission(raw *RawResponse) (*SubmissionResult, error) {
	rateLimit := ParseRateLimit(raw.Header)

	if successful(raw.StatusCode) {
		var txn Transaction

		err := json.Unmarshal(raw.Body, &txn)
		if err != nil {
			return nil, fmt.Errorf("parsing submission response: %w", decodeError(raw, err))
		}

		return &SubmissionResult{Transaction: &txn, RateLimit: rateLimit}, nil
	}

	svcErr := DecodeError(raw)
	if svcErr.Kind != KindBadRequest || svcErr.Problem == nil {
		return nil, fmt.Errorf("submitting transaction: %w", svcErr)
	}

	failure, ok := submissionFailure(svcErr.Problem)
	if !ok {
		return nil, fmt.Errorf("submitting transaction: %w", svcErr)
	}

	failure.RateLimit = rateLimit

	return &SubmissionResult{Failure: failure, RateLimit: rateLimit}, nil
}

func submissionFailure(problem *Problem) (*SubmissionFailure, bool) {
	if len(problem.Extras) == 0 {
		return nil, false
	}

	encoded, err := json.Marshal(problem.Extras)
	if err != nil {
		return nil, false
	}

	var extras submissionExtras

	err = json.Unmarshal(encoded, &extras)
	if err != nil || extras.ResultCodes == nil {
		return nil, false
	}

	return &SubmissionFailure{
		Problem:     *problem,
		ResultCodes: *extras.ResultCodes,
		EnvelopeXDR: extras.EnvelopeXDR,
		ResultXDR:   extras.ResultXDR,
	}, true
}

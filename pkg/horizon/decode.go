package horizon

import (
	"fmt"

	json "github.com/goccy/go-json"
)

func successful(status int) bool {
	return status >= 200 && status < 300
}

// DecodeResponse decodes a single resource, or maps the response to a
// ServiceError.
func DecodeResponse[T any](raw *RawResponse) (*Response[T], error) {
	if !successful(raw.StatusCode) {
		return nil, DecodeError(raw)
	}

	var data T

	err := json.Unmarshal(raw.Body, &data)
	if err != nil {
		return nil, decodeError(raw, fmt.Errorf("parsing resource response: %w", err))
	}

	return &Response[T]{
		Data:       data,
		StatusCode: raw.StatusCode,
		Header:     raw.Header,
		RateLimit:  ParseRateLimit(raw.Header),
	}, nil
}

// DecodePage decodes a page envelope produced by req, or maps the response
// to a ServiceError.
func DecodePage[T any](raw *RawResponse, req CollectionRequest[T]) (*Page[T], error) {
	if !successful(raw.StatusCode) {
		return nil, DecodeError(raw)
	}

	var page Page[T]

	err := json.Unmarshal(raw.Body, &page)
	if err != nil {
		return nil, decodeError(raw, fmt.Errorf("parsing page response: %w", err))
	}

	page.RateLimit = ParseRateLimit(raw.Header)
	page.request = req

	return &page, nil
}

// decodeFrame decodes one stream frame's payload.
func decodeFrame[T any](data string) (T, error) {
	var item T

	err := json.Unmarshal([]byte(data), &item)
	if err != nil {
		return item, fmt.Errorf("parsing stream event: %w", err)
	}

	return item, nil
}

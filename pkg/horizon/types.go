package horizon

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// Link is a HAL link. Templated links carry an RFC 6570 suffix such as
// "{?cursor,limit,order}".
type Link struct {
	Href      string `json:"href"                yaml:"href"`
	Templated bool   `json:"templated,omitempty" yaml:"templated,omitempty"`
}

// Resolve returns the href with any template expression removed.
func (l Link) Resolve() string {
	if !l.Templated {
		return l.Href
	}

	if idx := strings.IndexByte(l.Href, '{'); idx >= 0 {
		return l.Href[:idx]
	}

	return l.Href
}

// PageLinks are the navigation links of a page.
type PageLinks struct {
	Self Link `json:"self"           yaml:"self"`
	Next Link `json:"next"           yaml:"next"`
	Prev Link `json:"prev,omitempty" yaml:"prev,omitempty"`
}

// Page is one page of a collection. An empty page is a normal page: its
// links still point at valid cursor boundaries.
type Page[T any] struct {
	Links     PageLinks `json:"_links"`
	Records   []T       `json:"-"`
	RateLimit RateLimit `json:"-"`

	request CollectionRequest[T]
}

type pageEnvelope[T any] struct {
	Links    PageLinks `json:"_links"`
	Embedded struct {
		Records []T `json:"records"`
	} `json:"_embedded"`
}

// MarshalJSON renders the page in the service's HAL envelope.
func (p Page[T]) MarshalJSON() ([]byte, error) {
	var envelope pageEnvelope[T]

	envelope.Links = p.Links
	envelope.Embedded.Records = p.Records

	if envelope.Embedded.Records == nil {
		envelope.Embedded.Records = []T{}
	}

	return json.Marshal(envelope)
}

// UnmarshalJSON reads the service's HAL envelope.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var envelope pageEnvelope[T]

	err := json.Unmarshal(data, &envelope)
	if err != nil {
		return err //nolint:wrapcheck // json.Unmarshaler contract
	}

	p.Links = envelope.Links
	p.Records = envelope.Embedded.Records

	if p.Records == nil {
		p.Records = []T{}
	}

	return nil
}

// Len returns the number of records.
func (p *Page[T]) Len() int {
	return len(p.Records)
}

// Request returns the request that produced this page.
func (p *Page[T]) Request() CollectionRequest[T] {
	return p.request
}

// NextRequest renders the next link as a request of the same collection.
func (p *Page[T]) NextRequest() (CollectionRequest[T], bool) {
	return p.linkRequest(p.Links.Next)
}

// PrevRequest renders the prev link as a request of the same collection.
func (p *Page[T]) PrevRequest() (CollectionRequest[T], bool) {
	return p.linkRequest(p.Links.Prev)
}

// SelfRequest renders the self link as a request of the same collection.
func (p *Page[T]) SelfRequest() (CollectionRequest[T], bool) {
	return p.linkRequest(p.Links.Self)
}

func (p *Page[T]) linkRequest(link Link) (CollectionRequest[T], bool) {
	next, ok := p.request.fromLink(link)
	if !ok {
		return CollectionRequest[T]{}, false
	}

	return CollectionRequest[T]{next}, true
}

// Response wraps a single decoded resource.
type Response[T any] struct {
	Data       T
	StatusCode int
	Header     http.Header
	RateLimit  RateLimit
}

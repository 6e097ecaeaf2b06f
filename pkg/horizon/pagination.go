package horizon

import (
	"context"
	"iter"
)

// Paginator walks a collection page by page. It is lazy: nothing is fetched
// until the first call to Next. It never reports completion on its own since
// the collection may still grow; an empty page is an ordinary result. The
// first error ends the walk and is returned by every later call.
//
// A Paginator is owned by one consumer and is not safe for concurrent use.
type Paginator[T any] struct {
	exec    Executor
	next    CollectionRequest[T]
	current *Page[T]
	err     error
}

// Paginate returns a Paginator starting at req.
func Paginate[T any](exec Executor, req CollectionRequest[T]) *Paginator[T] {
	return &Paginator[T]{exec: exec, next: req}
}

// Next fetches the next page.
func (p *Paginator[T]) Next(ctx context.Context) (*Page[T], error) {
	if p.err != nil {
		return nil, p.err
	}

	page, err := FetchPage(ctx, p.exec, p.next)
	if err != nil {
		p.err = err

		return nil, err
	}

	p.current = page
	p.next = p.advance(page)

	return page, nil
}

// advance picks the request for the page after page. Without a next link
// the cursor moves past the last record, or the request is reissued as is.
func (p *Paginator[T]) advance(page *Page[T]) CollectionRequest[T] {
	if next, ok := page.NextRequest(); ok {
		return next
	}

	if n := len(page.Records); n > 0 {
		if token, ok := any(page.Records[n-1]).(Pageable); ok && token.PagingToken() != "" {
			return page.request.WithCursor(Cursor(token.PagingToken()))
		}
	}

	return page.request
}

// Current returns the most recently fetched page, or nil.
func (p *Paginator[T]) Current() *Page[T] {
	return p.current
}

// Pending returns the request the next call to Next will issue. It can be
// stored and passed to Paginate later to resume the walk.
func (p *Paginator[T]) Pending() CollectionRequest[T] {
	return p.next
}

// Err returns the error that ended the walk, if any.
func (p *Paginator[T]) Err() error {
	return p.err
}

// Pages adapts the paginator to a range-over-func sequence. The sequence
// ends after the first error or when the consumer stops ranging.
func (p *Paginator[T]) Pages(ctx context.Context) iter.Seq2[*Page[T], error] {
	return func(yield func(*Page[T], error) bool) {
		for {
			page, err := p.Next(ctx)
			if !yield(page, err) || err != nil {
				return
			}
		}
	}
}

// PaginationOptions bounds CollectPages.
type PaginationOptions struct {
	// MaxPages stops after this many pages. Zero means no page limit, so
	// StopOnEmptyPage must be set for the call to end.
	MaxPages int
	// StopOnEmptyPage stops at the first empty page.
	StopOnEmptyPage bool
}

// DefaultPaginationOptions collects until the first empty page.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{StopOnEmptyPage: true}
}

// CollectPages pulls pages from p and returns their records in order.
// Records collected before an error are returned with it.
func CollectPages[T any](ctx context.Context, p *Paginator[T], opts *PaginationOptions) ([]T, error) {
	if opts == nil {
		opts = DefaultPaginationOptions()
	}

	var records []T

	for pages := 0; opts.MaxPages == 0 || pages < opts.MaxPages; pages++ {
		page, err := p.Next(ctx)
		if err != nil {
			return records, err
		}

		if page.Len() == 0 && opts.StopOnEmptyPage {
			break
		}

		records = append(records, page.Records...)
	}

	return records, nil
}

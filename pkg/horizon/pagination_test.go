package horizon

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedgers serves /ledgers with Horizon's cursor semantics over a
// growing list of sequences.
type fakeLedgers struct {
	mu        sync.Mutex
	sequences []int
	failWith  int
}

func (f *fakeLedgers) add(seq int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sequences = append(f.sequences, seq)
}

func (f *fakeLedgers) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != 0 {
		writer.WriteHeader(f.failWith)

		return
	}

	query := request.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))

	if limit == 0 {
		limit = 10
	}

	order := query.Get("order")
	if order == "" {
		order = "asc"
	}

	cursor, _ := strconv.Atoi(query.Get("cursor"))
	if order == "desc" && query.Get("cursor") == "" {
		cursor = 1 << 30
	}

	records := []Ledger{}

	if order == "asc" {
		for _, seq := range f.sequences {
			if seq > cursor && len(records) < limit {
				records = append(records, ledgerRecord(seq))
			}
		}
	} else {
		for i := len(f.sequences) - 1; i >= 0; i-- {
			if f.sequences[i] < cursor && len(records) < limit {
				records = append(records, ledgerRecord(f.sequences[i]))
			}
		}
	}

	first, last := strconv.Itoa(cursor), strconv.Itoa(cursor)
	if len(records) > 0 {
		first, last = records[0].Token, records[len(records)-1].Token
	}

	opposite := "desc"
	if order == "desc" {
		opposite = "asc"
	}

	link := func(cursor, order string) Link {
		values := url.Values{"cursor": {cursor}, "limit": {strconv.Itoa(limit)}, "order": {order}}

		return Link{Href: "https://horizon.example/ledgers?" + values.Encode()}
	}

	page := Page[Ledger]{
		Links: PageLinks{
			Self: link(query.Get("cursor"), order),
			Next: link(last, order),
			Prev: link(first, opposite),
		},
		Records: records,
	}

	writer.Header().Set("X-Ratelimit-Limit", "3600")
	writer.Header().Set("X-Ratelimit-Remaining", "3599")
	writer.Header().Set("X-Ratelimit-Reset", "42")
	_ = json.NewEncoder(writer).Encode(page)
}

func ledgerRecord(seq int) Ledger {
	token := strconv.Itoa(seq)

	return Ledger{ID: "ledger-" + token, Token: token, Sequence: uint32(seq)}
}

func newFakeLedgers(n int) *fakeLedgers {
	fake := &fakeLedgers{}
	for i := 1; i <= n; i++ {
		fake.add(i)
	}

	return fake
}

func tokensOf(records []Ledger) []string {
	tokens := make([]string, 0, len(records))
	for _, record := range records {
		tokens = append(tokens, record.Token)
	}

	return tokens
}

func TestPage_RoundTripNavigation(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &handlerTransport{handler: newFakeLedgers(9)})
	ctx := context.Background()

	first, err := FetchPage(ctx, exec, AllLedgers().WithLimit(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, tokensOf(first.Records))
	assert.Equal(t, RateLimit{Limit: 3600, Remaining: 3599, Reset: 42, Known: true}, first.RateLimit)

	nextReq, ok := first.NextRequest()
	require.True(t, ok)
	assert.Equal(t, CollectionLedgers, nextReq.Collection())
	assert.Equal(t, Cursor("3"), nextReq.Cursor())

	second, err := FetchPage(ctx, exec, nextReq)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "5", "6"}, tokensOf(second.Records))

	prevReq, ok := second.PrevRequest()
	require.True(t, ok)
	assert.Equal(t, OrderDesc, prevReq.Order())

	back, err := FetchPage(ctx, exec, prevReq)
	require.NoError(t, err)
	assert.ElementsMatch(t, first.Records, back.Records)
}

func TestPaginator(t *testing.T) {
	t.Parallel()

	t.Run("is lazy", func(t *testing.T) {
		t.Parallel()

		transport := &handlerTransport{handler: newFakeLedgers(3)}
		exec := newTestExecutor(t, transport)

		paginator := Paginate(exec, AllLedgers())
		assert.Zero(t, transport.count())
		assert.Nil(t, paginator.Current())

		_, err := paginator.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, transport.count())
	})

	t.Run("continues past an empty page", func(t *testing.T) {
		t.Parallel()

		fake := newFakeLedgers(4)
		exec := newTestExecutor(t, &handlerTransport{handler: fake})
		paginator := Paginate(exec, AllLedgers().WithLimit(2))
		ctx := context.Background()

		page, err := paginator.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, tokensOf(page.Records))

		page, err = paginator.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"3", "4"}, tokensOf(page.Records))

		page, err = paginator.Next(ctx)
		require.NoError(t, err)
		assert.Empty(t, page.Records)

		fake.add(5)

		page, err = paginator.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"5"}, tokensOf(page.Records))
		assert.Equal(t, Cursor("5"), paginator.Pending().Cursor())
	})

	t.Run("error ends the walk", func(t *testing.T) {
		t.Parallel()

		fake := newFakeLedgers(4)
		transport := &handlerTransport{handler: fake}
		exec := newTestExecutor(t, transport)
		paginator := Paginate(exec, AllLedgers().WithLimit(2))
		ctx := context.Background()

		first, err := paginator.Next(ctx)
		require.NoError(t, err)
		require.Len(t, first.Records, 2)

		fake.mu.Lock()
		fake.failWith = http.StatusServiceUnavailable
		fake.mu.Unlock()

		_, err = paginator.Next(ctx)
		require.Error(t, err)
		assert.True(t, IsServerError(err))

		_, again := paginator.Next(ctx)
		require.ErrorIs(t, again, err)
		assert.Equal(t, 2, transport.count())
		assert.Equal(t, []string{"1", "2"}, tokensOf(first.Records), "pages already returned are kept")
	})

	t.Run("missing next link advances past the last record", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`{"_links":{"self":{"href":""}},"_embedded":{"records":[{"id":"a","paging_token":"77"}]}}`))
		})
		exec := newTestExecutor(t, &handlerTransport{handler: handler})
		paginator := Paginate(exec, AllLedgers())

		_, err := paginator.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Cursor("77"), paginator.Pending().Cursor())
	})

	t.Run("range over pages", func(t *testing.T) {
		t.Parallel()

		exec := newTestExecutor(t, &handlerTransport{handler: newFakeLedgers(5)})
		paginator := Paginate(exec, AllLedgers().WithLimit(2))

		var tokens []string

		for page, err := range paginator.Pages(context.Background()) {
			require.NoError(t, err)

			if page.Len() == 0 {
				break
			}

			tokens = append(tokens, tokensOf(page.Records)...)
		}

		assert.Equal(t, []string{"1", "2", "3", "4", "5"}, tokens)
	})
}

func TestCollectPages(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &handlerTransport{handler: newFakeLedgers(7)})

	all, err := CollectPages(context.Background(), Paginate(exec, AllLedgers().WithLimit(3)), nil)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	bounded, err := CollectPages(context.Background(), Paginate(exec, AllLedgers().WithLimit(3)),
		&PaginationOptions{MaxPages: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, tokensOf(bounded))
}

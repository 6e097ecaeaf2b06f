package horizon

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failedSubmission = `{
  "type": "https://stellar.org/horizon-errors/transaction_failed",
  "title": "Transaction Failed",
  "status": 400,
  "detail": "The transaction failed when submitted to the stellar network.",
  "extras": {
    "envelope_xdr": "AAAAAgAAAAB...",
    "result_xdr": "AAAAAAAAAGT/////AAAAAQAAAAAAAAAB////+wAAAAA=",
    "result_codes": {
      "transaction": "tx_failed",
      "operations": ["op_underfunded", "op_success"]
    }
  }
}`

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSubmit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		check    func(t *testing.T, result *SubmissionResult)
		checkErr func(t *testing.T, err error)
	}{
		{
			name:   "applied transaction",
			status: http.StatusOK,
			body:   `{"id":"abc","hash":"abc","ledger":900,"successful":true,"paging_token":"3865470566600704"}`,
			check: func(t *testing.T, result *SubmissionResult) {
				t.Helper()

				require.True(t, result.Successful())
				assert.Equal(t, "abc", result.Transaction.Hash)
				assert.Equal(t, uint32(900), result.Transaction.Ledger)
				assert.Nil(t, result.Failure)
			},
		},
		{
			name:   "rejected transaction keeps result codes",
			status: http.StatusBadRequest,
			body:   failedSubmission,
			check: func(t *testing.T, result *SubmissionResult) {
				t.Helper()

				require.False(t, result.Successful())
				require.NotNil(t, result.Failure)
				assert.Equal(t, "tx_failed", result.Failure.ResultCodes.Transaction)
				assert.Equal(t, []string{"op_underfunded", "op_success"}, result.Failure.ResultCodes.Operations)
				assert.Equal(t, "AAAAAAAAAGT/////AAAAAQAAAAAAAAAB////+wAAAAA=", result.Failure.ResultXDR)
				assert.Equal(t, "AAAAAgAAAAB...", result.Failure.EnvelopeXDR)
				assert.Equal(t, "Transaction Failed", result.Failure.Problem.Title)
			},
		},
		{
			name:   "malformed envelope is a bad request",
			status: http.StatusBadRequest,
			body:   `{"type":"https://stellar.org/horizon-errors/transaction_malformed","title":"Transaction Malformed","status":400,"extras":{"envelope_xdr":"bad"}}`,
			checkErr: func(t *testing.T, err error) {
				t.Helper()

				assert.True(t, IsBadRequest(err))

				svcErr, ok := AsServiceError(err)
				require.True(t, ok)
				assert.Equal(t, "Transaction Malformed", svcErr.Problem.Title)
			},
		},
		{
			name:   "timeout is a server error",
			status: http.StatusGatewayTimeout,
			body:   `{"type":"https://stellar.org/horizon-errors/timeout","title":"Timeout","status":504}`,
			checkErr: func(t *testing.T, err error) {
				t.Helper()

				assert.True(t, IsServerError(err))
			},
		},
		{
			name:   "garbled success body",
			status: http.StatusOK,
			body:   `not json`,
			checkErr: func(t *testing.T, err error) {
				t.Helper()

				assert.True(t, IsDecode(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var form url.Values

			var contentType string

			handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				contentType = request.Header.Get("Content-Type")
				body, _ := io.ReadAll(request.Body)
				form, _ = url.ParseQuery(string(body))

				assert.Equal(t, http.MethodPost, request.Method)
				assert.Equal(t, "/transactions", request.URL.Path)

				writer.Header().Set("X-Ratelimit-Limit", "100")
				writer.Header().Set("X-Ratelimit-Remaining", "50")
				writer.Header().Set("X-Ratelimit-Reset", "12")
				writer.WriteHeader(tt.status)
				_, _ = writer.Write([]byte(tt.body))
			})

			exec := newTestExecutor(t, &handlerTransport{handler: handler})

			result, err := Submit(context.Background(), exec, "  AAAAenvelope==\n")

			assert.Equal(t, "application/x-www-form-urlencoded", contentType)
			assert.Equal(t, "AAAAenvelope==", form.Get("tx"))

			if tt.checkErr != nil {
				require.Error(t, err)
				assert.Nil(t, result)
				tt.checkErr(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 50, result.RateLimit.Remaining)
			tt.check(t, result)
		})
	}
}

func TestSubmit_EmptyEnvelope(t *testing.T) {
	t.Parallel()

	transport := &handlerTransport{handler: http.NotFoundHandler()}
	exec := newTestExecutor(t, transport)

	_, err := Submit(context.Background(), exec, "   ")
	require.ErrorIs(t, err, ErrEnvelopeRequired)
	assert.Zero(t, transport.count())
}

package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTargetExact(t *testing.T) {
	tgt := ParseTarget("stake1abc")
	require.True(t, tgt.matches("stake1abc"))
	require.False(t, tgt.matches("stake1abcd"))
}

// An abbreviated target matches exactly when the address both starts
// with the prefix and ends with the suffix.
func TestParseTargetEllipsisPattern(t *testing.T) {
	tgt := ParseTarget("stake1u9...24r8yq")
	require.True(t, tgt.matches("stake1u9t04dtwptk5776eluj6ruyd782k66npnf55tdrp6dvwnzs24r8yq"))
	require.False(t, tgt.matches("stake1u9t04dtwptk5776eluj6ruyd782k66npnf55tdrp6dvwnzs24r8yp"))
	require.False(t, tgt.matches("stake1u8t04dtwptk5776eluj6ruyd782k66npnf55tdrp6dvwnzs24r8yq"))
}

func TestClassifierNoTargetsNoChainMatchesEverything(t *testing.T) {
	c := NewClassifier(nil, nil)
	v, err := c.Classify(context.Background(), "stake1anything")
	require.NoError(t, err)
	require.True(t, v.Matched)
	require.Equal(t, ReasonChainActive, v.Reason)
}

func TestClassifierUserTargetShortCircuitsChain(t *testing.T) {
	c := NewClassifier([]string{"stake1abc"}, &ChainClient{})
	v, err := c.Classify(context.Background(), "stake1abc")
	require.NoError(t, err)
	require.True(t, v.Matched)
	require.Equal(t, ReasonUserTarget, v.Reason)
	require.Equal(t, 0, v.TargetIndex)
}

func TestClassifierUserTargetsNoMatchReturnsNoMatchWithoutChain(t *testing.T) {
	c := NewClassifier([]string{"stake1abc"}, nil)
	v, err := c.Classify(context.Background(), "stake1xyz")
	require.NoError(t, err)
	require.False(t, v.Matched)
}

func TestAllTargetsMatched(t *testing.T) {
	targets := []Target{ParseTarget("a"), ParseTarget("b")}
	require.False(t, AllTargetsMatched(targets, map[int]bool{0: true}))
	require.True(t, AllTargetsMatched(targets, map[int]bool{0: true, 1: true}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*ChainClient, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := &ChainClient{
		BaseURL:   srv.URL,
		ProjectID: "test-key",
		HTTP:      srv.Client(),
		sleep:     func(time.Duration) {},
	}
	return c, srv.Close
}

func TestChainClientActiveOn200WithBody(t *testing.T) {
	c, close := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("project_id"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"controlled_amount":"1000000"}`))
	})
	defer close()

	active, err := c.IsActive(context.Background(), "stake1abc")
	require.NoError(t, err)
	require.True(t, active)
}

func TestChainClientInactiveOn404(t *testing.T) {
	c, close := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer close()

	active, err := c.IsActive(context.Background(), "stake1abc")
	require.NoError(t, err)
	require.False(t, active)
}

func TestChainClientAuthErrorIsFatal(t *testing.T) {
	c, close := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	defer close()

	_, err := c.IsActive(context.Background(), "stake1abc")
	require.ErrorIs(t, err, ErrOracleAuth)
}

func TestChainClientRetriesThenFailsTransient(t *testing.T) {
	attempts := 0
	c, close := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer close()

	_, err := c.IsActive(context.Background(), "stake1abc")
	require.ErrorIs(t, err, ErrOracleTransient)
	require.Equal(t, 3, attempts)
}

func TestChainClientRecoversAfterTransientRetry(t *testing.T) {
	attempts := 0
	c, close := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"controlled_amount":"1"}`))
	})
	defer close()

	active, err := c.IsActive(context.Background(), "stake1abc")
	require.NoError(t, err)
	require.True(t, active)
	require.Equal(t, 2, attempts)
}

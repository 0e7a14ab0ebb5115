package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcpdex/mcpdex/internal/errors"
)

func TestQueryNormalize(t *testing.T) {
	t.Parallel()

	t.Run("at least one dimension required", func(t *testing.T) {
		t.Parallel()

		_, err := Query{}.normalize()
		require.ErrorIs(t, err, errors.ErrInvalidQuery)
	})

	t.Run("capability sugar desugars to a required tag", func(t *testing.T) {
		t.Parallel()

		n, err := Query{Capability: " Email_Send "}.normalize()
		require.NoError(t, err)
		require.Equal(t, OperatorAnd, n.capabilities.Operator)
		require.Equal(t, []string{"email_send"}, n.capabilities.Required)
	})

	t.Run("sugar merges into a structured query", func(t *testing.T) {
		t.Parallel()

		n, err := Query{
			Capability:   "email_send",
			Capabilities: &CapabilityQuery{Operator: OperatorOr, Required: []string{"calendar"}},
		}.normalize()
		require.NoError(t, err)
		require.Equal(t, OperatorOr, n.capabilities.Operator)
		require.Equal(t, []string{"calendar", "email_send"}, n.capabilities.Required)
	})

	t.Run("domain and domains combine", func(t *testing.T) {
		t.Parallel()

		n, err := Query{Domain: "A.com", Domains: []string{"b.com"}}.normalize()
		require.NoError(t, err)
		require.Equal(t, []string{"a.com", "b.com"}, n.domains)
	})

	t.Run("hard filters collect into the filter map", func(t *testing.T) {
		t.Parallel()

		cors := true
		n, err := Query{
			Category:     "productivity",
			AuthType:     "oauth2",
			Transport:    "sse",
			RequiresCORS: &cors,
			Keywords:     []string{"Email", "team"},
		}.normalize()
		require.NoError(t, err)
		require.Equal(t, map[string]string{
			"category":  "productivity",
			"auth":      "oauth2",
			"transport": "sse",
			"cors":      "true",
			"keywords":  "email,team",
		}, n.filters)
	})

	t.Run("healthy only defaults to true", func(t *testing.T) {
		t.Parallel()

		n, err := Query{Domain: "a.com"}.normalize()
		require.NoError(t, err)
		require.True(t, n.healthyOnly)

		f := false
		n, err = Query{Domain: "a.com", HealthyOnly: &f}.normalize()
		require.NoError(t, err)
		require.False(t, n.healthyOnly)
	})

	t.Run("limit defaults and caps", func(t *testing.T) {
		t.Parallel()

		n, err := Query{Domain: "a.com"}.normalize()
		require.NoError(t, err)
		require.Equal(t, DefaultLimit, n.limit)

		n, err = Query{Domain: "a.com", Limit: 500}.normalize()
		require.NoError(t, err)
		require.Equal(t, MaxLimit, n.limit)
	})

	t.Run("sort by defaults to relevance", func(t *testing.T) {
		t.Parallel()

		n, err := Query{Domain: "a.com"}.normalize()
		require.NoError(t, err)
		require.Equal(t, SortByRelevance, n.sortBy)
	})

	tests := []struct {
		name  string
		query Query
	}{
		{
			name:  "unknown operator",
			query: Query{Capabilities: &CapabilityQuery{Operator: "XOR", Required: []string{"a"}}},
		},
		{
			name:  "minimum match out of range",
			query: Query{Capabilities: &CapabilityQuery{Required: []string{"a"}, MinimumMatch: 1.5}},
		},
		{
			name:  "min uptime out of range",
			query: Query{Domain: "a.com", MinUptime: 101},
		},
		{
			name:  "negative max response time",
			query: Query{Domain: "a.com", MaxResponseTime: -1},
		},
		{
			name:  "trust score out of range",
			query: Query{Domain: "a.com", MinTrustScore: 200},
		},
		{
			name:  "unknown sort dimension",
			query: Query{Domain: "a.com", SortBy: "alphabetical"},
		},
		{
			name:  "negative offset",
			query: Query{Domain: "a.com", Offset: -1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := tc.query.normalize()
			require.ErrorIs(t, err, errors.ErrInvalidQuery)
		})
	}
}

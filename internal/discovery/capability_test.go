package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchCapabilities(t *testing.T) {
	t.Parallel()

	tags := []string{"email_send", "email_read", "calendar"}

	tests := []struct {
		name      string
		query     CapabilityQuery
		wantScore float64
		wantKeep  bool
	}{
		{
			name:      "superset of required scores full marks",
			query:     CapabilityQuery{Operator: OperatorAnd, Required: []string{"email_send"}},
			wantScore: 1,
			wantKeep:  true,
		},
		{
			name:     "AND eliminates on a missing required tag",
			query:    CapabilityQuery{Operator: OperatorAnd, Required: []string{"email_send", "storage"}},
			wantKeep: false,
		},
		{
			name:      "OR keeps partial hits with partial score",
			query:     CapabilityQuery{Operator: OperatorOr, Required: []string{"email_send", "storage"}},
			wantScore: 0.5,
			wantKeep:  true,
		},
		{
			name:     "OR with zero hits eliminates",
			query:    CapabilityQuery{Operator: OperatorOr, Required: []string{"storage", "search"}},
			wantKeep: false,
		},
		{
			name:     "exclude eliminates outright",
			query:    CapabilityQuery{Operator: OperatorAnd, Required: []string{"email_send"}, Exclude: []string{"calendar"}},
			wantKeep: false,
		},
		{
			name:     "NOT eliminates when a banned tag is present",
			query:    CapabilityQuery{Operator: OperatorNot, Required: []string{"calendar"}},
			wantKeep: false,
		},
		{
			name:      "NOT passes when banned tags are absent",
			query:     CapabilityQuery{Operator: OperatorNot, Required: []string{"storage"}},
			wantScore: 1,
			wantKeep:  true,
		},
		{
			name: "preferred hits raise the score below a required hit",
			query: CapabilityQuery{
				Operator:  OperatorAnd,
				Required:  []string{"email_send"},
				Preferred: []string{"calendar", "storage"},
			},
			// (1 + 0.7*1) / (1 + 0.7*2)
			wantScore: 1.7 / 2.4,
			wantKeep:  true,
		},
		{
			name: "tag in both sets counts once as required",
			query: CapabilityQuery{
				Operator:  OperatorAnd,
				Required:  []string{"email_send"},
				Preferred: []string{"email_send"},
			},
			wantScore: 1,
			wantKeep:  true,
		},
		{
			name: "minimum match cuts low combined scores",
			query: CapabilityQuery{
				Operator:     OperatorOr,
				Required:     []string{"email_send", "storage", "search", "payments"},
				MinimumMatch: 0.5,
			},
			wantScore: 0.25,
			wantKeep:  false,
		},
		{
			name:      "empty query passes neutrally",
			query:     CapabilityQuery{Operator: OperatorAnd},
			wantScore: 1,
			wantKeep:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			score, keep := matchCapabilities(tags, tc.query, DefaultPreferredWeight)
			require.Equal(t, tc.wantKeep, keep)
			if tc.wantKeep {
				require.InDelta(t, tc.wantScore, score, 0.0001)
			}
		})
	}
}

func TestResolveIntent(t *testing.T) {
	t.Parallel()

	t.Run("lexicon phrase resolves to tags", func(t *testing.T) {
		t.Parallel()

		tags, fallback := resolveIntent("I want to send emails to my team")
		require.Equal(t, []string{"email_send", "email"}, tags)
		require.Nil(t, fallback)
	})

	t.Run("multiple phrases merge without duplicates", func(t *testing.T) {
		t.Parallel()

		tags, fallback := resolveIntent("send email and schedule meeting")
		require.Equal(t, []string{"email_send", "email", "calendar_write", "calendar"}, tags)
		require.Nil(t, fallback)
	})

	t.Run("unknown intent falls back to tokens", func(t *testing.T) {
		t.Parallel()

		tags, fallback := resolveIntent("frobnicate the widgets")
		require.Nil(t, tags)
		require.Equal(t, []string{"frobnicate", "the", "widgets"}, fallback)
	})

	t.Run("empty intent resolves to nothing", func(t *testing.T) {
		t.Parallel()

		tags, fallback := resolveIntent("   ")
		require.Nil(t, tags)
		require.Nil(t, fallback)
	})
}

func TestKeywordOverlap(t *testing.T) {
	t.Parallel()

	keywords := []string{"invoices", "payments", "billing"}

	require.InDelta(t, 0, keywordOverlap(nil, keywords), 0.0001)
	require.InDelta(t, 0, keywordOverlap([]string{"weather"}, keywords), 0.0001)
	require.InDelta(t, 0.5, keywordOverlap([]string{"billing", "weather"}, keywords), 0.0001)
	require.InDelta(t, 1, keywordOverlap([]string{"billing", "payments"}, keywords), 0.0001)
}

package sfa

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/sfa/internal/domain/sfa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubLookups struct {
	codes   map[string][]sfa.Code
	teams   []sfa.Team
	teamErr error
}

func (s *stubLookups) Codes(_ context.Context, category string) ([]sfa.Code, error) {
	return s.codes[category], nil
}

func (s *stubLookups) Teams(_ context.Context) ([]sfa.Team, error) {
	return s.teams, s.teamErr
}

func TestFormOptionsLoader_Load(t *testing.T) {
	lookups := &stubLookups{
		codes: map[string][]sfa.Code{
			sfa.CodeCategoryBillingType: {{Code: "TAX", Name: "Tax invoice", Sort: 1}},
			sfa.CodeCategoryProbability: {{Code: "50", Name: "50%", Sort: 1}, {Code: "100", Name: "100%", Sort: 2}},
		},
		teams: []sfa.Team{{ID: "A", Name: "Team A"}},
	}

	opts, err := NewFormOptionsLoader(lookups, lookups).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, opts.BillingTypes, 1)
	assert.Len(t, opts.Probabilities, 2)
	assert.Equal(t, "Team A", opts.Teams[0].Name)

	lookups.teamErr = errors.New("down")
	_, err = NewFormOptionsLoader(lookups, lookups).Load(context.Background())
	assert.ErrorContains(t, err, "load teams")
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	n.Success("Payments added", "2 payment(s) added")
	n.Error("Failed to update payment", "timeout")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "notify", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "timeout", entries[1].ContextMap()["description"])
}

package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/Veraticus/finsight/internal/model"
)

type fakeClient struct {
	probeErr   error
	probeCalls int
	block      bool
}

func (f *fakeClient) Generate(context.Context, string) (string, error) {
	return "", nil
}

func (f *fakeClient) Probe(ctx context.Context) error {
	f.probeCalls++
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.probeErr
}

func quietOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSelector_Initialize(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		local      *fakeClient
		hostedA    *fakeClient
		hostedB    *fakeClient
		wantActive model.ProviderName
		wantProbed []int
	}{
		{
			name:       "local wins and short-circuits",
			local:      &fakeClient{},
			hostedA:    &fakeClient{},
			hostedB:    &fakeClient{},
			wantActive: model.ProviderLocal,
			wantProbed: []int{1, 0, 0},
		},
		{
			name:       "falls through to hosted a",
			local:      &fakeClient{probeErr: down},
			hostedA:    &fakeClient{},
			hostedB:    &fakeClient{},
			wantActive: model.ProviderHostedA,
			wantProbed: []int{1, 1, 0},
		},
		{
			name:       "falls through to hosted b",
			local:      &fakeClient{probeErr: down},
			hostedA:    &fakeClient{probeErr: down},
			hostedB:    &fakeClient{},
			wantActive: model.ProviderHostedB,
			wantProbed: []int{1, 1, 1},
		},
		{
			name:       "nothing reachable selects fallback",
			local:      &fakeClient{probeErr: down},
			hostedA:    &fakeClient{probeErr: down},
			hostedB:    &fakeClient{probeErr: down},
			wantActive: model.ProviderFallback,
			wantProbed: []int{1, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector([]Candidate{
				{Name: model.ProviderLocal, Client: tt.local},
				{Name: model.ProviderHostedA, Client: tt.hostedA},
				{Name: model.ProviderHostedB, Client: tt.hostedB},
			}, quietOptions())

			results := s.Initialize(context.Background())

			assert.Equal(t, tt.wantActive, s.Active())
			assert.Equal(t, tt.wantProbed, []int{tt.local.probeCalls, tt.hostedA.probeCalls, tt.hostedB.probeCalls})
			assert.Len(t, results, tt.wantProbed[0]+tt.wantProbed[1]+tt.wantProbed[2])
		})
	}
}

func TestSelector_UnconfiguredCandidateIsSkipped(t *testing.T) {
	hostedB := &fakeClient{}
	s := NewSelector([]Candidate{
		{Name: model.ProviderLocal, Client: &fakeClient{probeErr: errors.New("down")}},
		{Name: model.ProviderHostedA},
		{Name: model.ProviderHostedB, Client: hostedB},
	}, quietOptions())

	results := s.Initialize(context.Background())

	require.Len(t, results, 3)
	assert.ErrorIs(t, results[1].Err, common.ErrProviderUnavailable)
	assert.False(t, results[1].Reachable)
	assert.True(t, results[2].Reachable)
	assert.Equal(t, model.ProviderHostedB, s.Active())
	assert.False(t, s.Configured(model.ProviderHostedA))
	assert.True(t, s.Configured(model.ProviderHostedB))
}

func TestSelector_ProbeTimeout(t *testing.T) {
	opts := quietOptions()
	opts.ProbeTimeout = 20 * time.Millisecond

	s := NewSelector([]Candidate{
		{Name: model.ProviderLocal, Client: &fakeClient{block: true}},
	}, opts)

	start := time.Now()
	results := s.Initialize(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, common.ErrProviderUnavailable)
	assert.Equal(t, model.ProviderFallback, s.Active())
}

func TestSelector_InitializeWithProgress(t *testing.T) {
	s := NewSelector([]Candidate{
		{Name: model.ProviderLocal, Client: &fakeClient{probeErr: errors.New("down")}},
		{Name: model.ProviderHostedA, Client: &fakeClient{}},
	}, quietOptions())

	var seen []model.ProviderName
	s.InitializeWithProgress(context.Background(), func(r ProbeResult) {
		seen = append(seen, r.Name)
	})

	assert.Equal(t, []model.ProviderName{model.ProviderLocal, model.ProviderHostedA}, seen)
}

func TestSelector_Switch(t *testing.T) {
	local := &fakeClient{}
	s := NewSelector([]Candidate{
		{Name: model.ProviderLocal, Client: local},
		{Name: model.ProviderHostedA},
	}, quietOptions())

	assert.Equal(t, model.ProviderFallback, s.Active(), "starts on fallback before initialization")

	require.NoError(t, s.Switch(model.ProviderLocal))
	assert.Equal(t, model.ProviderLocal, s.Active())
	assert.Zero(t, local.probeCalls, "switching must not probe")

	name, client, ok := s.Client()
	assert.Equal(t, model.ProviderLocal, name)
	assert.True(t, ok)
	assert.Same(t, local, client)

	require.NoError(t, s.Switch(model.ProviderHostedA))
	_, _, ok = s.Client()
	assert.False(t, ok, "unconfigured provider has no client")

	require.NoError(t, s.Switch(model.ProviderFallback))
	_, _, ok = s.Client()
	assert.False(t, ok)

	err := s.Switch("mystery")
	assert.ErrorIs(t, err, common.ErrUnknownProvider)
	assert.Equal(t, model.ProviderFallback, s.Active())
}

func TestSelector_Candidates(t *testing.T) {
	s := NewSelector([]Candidate{
		{Name: model.ProviderLocal},
		{Name: model.ProviderHostedA},
		{Name: model.ProviderHostedB},
	}, quietOptions())

	assert.Equal(t, []model.ProviderName{model.ProviderLocal, model.ProviderHostedA, model.ProviderHostedB}, s.Candidates())
}

package insight

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/finsight/internal/llm"
	"github.com/Veraticus/finsight/internal/model"
	"github.com/Veraticus/finsight/internal/provider"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type stubClient struct {
	err     error
	reply   string
	prompts []string
	block   bool
	mu      sync.Mutex
}

func (c *stubClient) Generate(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	c.prompts = append(c.prompts, prompt)
	c.mu.Unlock()

	if c.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return c.reply, c.err
}

func (c *stubClient) Probe(context.Context) error {
	return nil
}

func (c *stubClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

func newTestEngine(t *testing.T, client llm.Client, active model.ProviderName) (*Engine, *provider.Selector) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	selector := provider.NewSelector([]provider.Candidate{
		{Name: model.ProviderLocal, Client: client},
		{Name: model.ProviderHostedA},
		{Name: model.ProviderHostedB},
	}, provider.Options{Logger: logger})
	require.NoError(t, selector.Switch(active))

	engine, err := NewEngine(Deps{
		Selector:       selector,
		Logger:         logger,
		Now:            func() time.Time { return fixedNow },
		RequestTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	return engine, selector
}

func TestNewEngine_RequiresSelector(t *testing.T) {
	_, err := NewEngine(Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider selector dependency is required")
}

func TestEngine_ComputeInsight_Fallback(t *testing.T) {
	client := &stubClient{}
	engine, _ := newTestEngine(t, client, model.ProviderFallback)
	s := snapshotOf("3000", "1200", "400", "", 5)

	report := engine.ComputeInsight(context.Background(), s, "How am I doing?")

	want := ComputeFallbackInsight(s)
	want.GeneratedAt = fixedNow
	assert.Equal(t, want, report)
	assert.Zero(t, client.calls(), "fallback must not call any provider")
}

func TestEngine_ComputeInsight_ProviderReply(t *testing.T) {
	client := &stubClient{reply: "Sure! Here is the analysis:\n```json\n" + `{
		"insight": "You save a lot {really}.",
		"healthScore": 72.6,
		"recommendations": ["Invest the surplus"],
		"riskAssessment": {"level": "high", "score": 85, "factors": [], "mitigations": []},
		"behavioralPatterns": {"spendingPersonality": "Planner", "decisionMaking": "Deliberate", "riskTolerance": "reckless", "optimizationPotential": 140},
		"projections": {"monthly": 999999}
	}` + "\n```"}
	engine, selector := newTestEngine(t, client, model.ProviderLocal)
	s := snapshotOf("3000", "1200", "400", "", 5)
	s.EmotionalTags = []string{"confident"}

	report := engine.ComputeInsight(context.Background(), s, "Can I afford a holiday?")

	assert.Equal(t, model.ProviderLocal, report.Source)
	assert.Equal(t, "You save a lot {really}.", report.Insight)
	assert.Equal(t, 73, report.HealthScore)
	assert.Equal(t, []string{"Invest the surplus"}, report.Recommendations)
	assert.Equal(t, model.RiskLow, report.RiskAssessment.Level, "level follows the score")
	assert.Equal(t, model.RiskMedium, report.BehavioralPatterns.RiskTolerance)
	assert.InDelta(t, 100, report.BehavioralPatterns.OptimizationPotential, 0.001)
	assert.True(t, report.Projections.Monthly.Equal(decimal.NewFromInt(1400)), "projections come from the snapshot")
	assert.Equal(t, fixedNow, report.GeneratedAt)

	base := ComputeFallbackInsight(s)
	assert.Equal(t, base.Equation, report.Equation, "missing sections are filled in")
	assert.Equal(t, base.MarketComparisons, report.MarketComparisons)

	require.Equal(t, 1, client.calls())
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "Can I afford a holiday?")
	assert.Contains(t, prompt, "Net balance: 1400.00€")
	assert.Contains(t, prompt, "Savings rate: 46.7%")
	assert.Contains(t, prompt, "Reported feelings: confident")
	assert.Contains(t, prompt, `"healthScore": 0`)

	assert.Equal(t, model.ProviderLocal, selector.Active())
}

func TestEngine_ComputeInsight_HuggingFaceEchoesPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Inputs string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		generated := body.Inputs + "\n" + `{"insight":"real model answer","healthScore":77}`
		_ = json.NewEncoder(w).Encode([]map[string]string{{"generated_text": generated}})
	}))
	defer server.Close()

	client, err := llm.NewClient(llm.Config{
		Provider: llm.ProviderHuggingFace,
		BaseURL:  server.URL,
		Model:    "org/model-x",
		APIKey:   "hf-key",
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	selector := provider.NewSelector([]provider.Candidate{
		{Name: model.ProviderLocal},
		{Name: model.ProviderHostedA, Client: client},
		{Name: model.ProviderHostedB},
	}, provider.Options{Logger: logger})
	require.NoError(t, selector.Switch(model.ProviderHostedA))

	engine, err := NewEngine(Deps{Selector: selector, Logger: logger, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)

	s := snapshotOf("3000", "1200", "400", "", 5)
	report := engine.ComputeInsight(context.Background(), s, "How am I doing?")

	assert.Equal(t, model.ProviderHostedA, report.Source)
	assert.Equal(t, "real model answer", report.Insight)
	assert.Equal(t, 77, report.HealthScore)
	assert.Equal(t, ComputeFallbackInsight(s).Equation, report.Equation, "no placeholder text leaks into the report")
}

func TestEngine_ComputeInsight_FallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		client *stubClient
	}{
		{name: "request error", client: &stubClient{err: errors.New("503 service unavailable")}},
		{name: "no json", client: &stubClient{reply: "I am unable to help with that."}},
		{name: "truncated json", client: &stubClient{reply: `{"insight": "cut off`}},
		{name: "missing health score", client: &stubClient{reply: `{"insight": "fine"}`}},
		{name: "wrong types", client: &stubClient{reply: `{"insight": 12, "healthScore": "high"}`}},
		{name: "timeout", client: &stubClient{block: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, selector := newTestEngine(t, tt.client, model.ProviderLocal)
			s := snapshotOf("2000", "900", "700", "300", 9)

			report := engine.ComputeInsight(context.Background(), s, "question")

			want := ComputeFallbackInsight(s)
			want.GeneratedAt = fixedNow
			assert.Equal(t, want, report)
			assert.Equal(t, 1, tt.client.calls(), "exactly one attempt, no retries")
			assert.Equal(t, model.ProviderLocal, selector.Active(), "a failed call keeps the selection")
		})
	}
}

func TestEngine_ComputeInsight_UnconfiguredProvider(t *testing.T) {
	engine, _ := newTestEngine(t, &stubClient{}, model.ProviderHostedB)
	report := engine.ComputeInsight(context.Background(), snapshotOf("1000", "", "", "", 5), "")
	assert.Equal(t, model.ProviderFallback, report.Source)
}

func TestEngine_ComputeInsight_Concurrent(t *testing.T) {
	engine, _ := newTestEngine(t, &stubClient{}, model.ProviderFallback)
	s := snapshotOf("3000", "1200", "400", "", 6)
	want := engine.ComputeInsight(context.Background(), s, "q")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, engine.ComputeInsight(context.Background(), s, "q"))
		}()
	}
	wg.Wait()
}

func TestEngine_SwitchProvider(t *testing.T) {
	engine, _ := newTestEngine(t, &stubClient{}, model.ProviderFallback)

	require.NoError(t, engine.SwitchProvider(model.ProviderHostedA))
	assert.Equal(t, model.ProviderHostedA, engine.ActiveProvider())

	assert.Error(t, engine.SwitchProvider("mystery"))
	assert.Equal(t, model.ProviderHostedA, engine.ActiveProvider())
}

func TestEngine_TestConnection(t *testing.T) {
	tests := []struct {
		name   string
		client *stubClient
		active model.ProviderName
		want   bool
	}{
		{name: "fallback is always available", client: &stubClient{}, active: model.ProviderFallback, want: true},
		{name: "provider answers", client: &stubClient{reply: "not even json"}, active: model.ProviderLocal, want: true},
		{name: "provider fails", client: &stubClient{err: errors.New("boom")}, active: model.ProviderLocal, want: false},
		{name: "provider unconfigured", client: &stubClient{}, active: model.ProviderHostedA, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, selector := newTestEngine(t, tt.client, tt.active)
			assert.Equal(t, tt.want, engine.TestConnection(context.Background()))
			assert.Equal(t, tt.active, selector.Active())
		})
	}
}

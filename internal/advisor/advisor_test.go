package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

type stubGenerator struct {
	out    string
	err    error
	block  bool
	prompt string
}

func (s *stubGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.out, s.err
}

func testProfile() model.Profile {
	return model.NewProfile("ML Engineer",
		[]string{"Python", "TensorFlow", "SQL"},
		[]model.Repository{
			{Name: "ml-project", Language: "Python", Stars: 15, Forks: 3},
			{Name: "site", Language: "JavaScript", Stars: 2},
		})
}

func newAdvisor(t *testing.T, gen Generator, opts ...Option) (*Advisor, model.Result) {
	t.Helper()
	require.NoError(t, logger.Init())
	engine := scoring.NewEngine()
	base, err := engine.Analyze(context.Background(), testProfile())
	require.NoError(t, err)
	opts = append([]Option{WithGenerator(gen)}, opts...)
	return New(engine, opts...), base
}

func TestAnalyze_AIResult(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		wantScore func(engine int) int
	}{
		{
			name:      "score in range",
			out:       `{"summary":"Good start.","top_suggestions":["Ship a model","Learn MLOps"],"score":72}`,
			wantScore: func(int) int { return 72 },
		},
		{
			name:      "score above range clamps to 95",
			out:       `{"summary":"s","top_suggestions":["a"],"score":120}`,
			wantScore: func(int) int { return 95 },
		},
		{
			name:      "score below range clamps to 30",
			out:       `{"summary":"s","top_suggestions":["a"],"score":10}`,
			wantScore: func(int) int { return 30 },
		},
		{
			name:      "fractional score rounds half up",
			out:       `{"summary":"s","top_suggestions":["a"],"score":66.5}`,
			wantScore: func(int) int { return 67 },
		},
		{
			name:      "missing score uses engine score",
			out:       `{"summary":"s","top_suggestions":["a"]}`,
			wantScore: func(e int) int { return e },
		},
		{
			name:      "zero score uses engine score",
			out:       `{"summary":"s","top_suggestions":["a"],"score":0}`,
			wantScore: func(e int) int { return e },
		},
		{
			name:      "non-numeric score uses engine score",
			out:       `{"summary":"s","top_suggestions":["a"],"score":"high"}`,
			wantScore: func(e int) int { return e },
		},
		{
			name:      "fenced json is accepted",
			out:       "```json\n{\"summary\":\"s\",\"top_suggestions\":[\"a\"],\"score\":50}\n```",
			wantScore: func(int) int { return 50 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, base := newAdvisor(t, &stubGenerator{out: tt.out})

			res, err := a.Analyze(context.Background(), testProfile())

			require.NoError(t, err)
			assert.Equal(t, model.SourceAI, res.Source)
			assert.Equal(t, tt.wantScore(base.Score), res.Score)
			assert.NotEmpty(t, res.Summary)
			assert.NotEmpty(t, res.Suggestions)
		})
	}
}

func TestAnalyze_SuggestionsTruncated(t *testing.T) {
	a, _ := newAdvisor(t, &stubGenerator{
		out: `{"summary":"s","top_suggestions":["1"," ","2","3","4","5"],"score":60}`,
	})

	res, err := a.Analyze(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, res.Suggestions)
}

func TestAnalyze_FallsBackToEngine(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{name: "generator error", gen: &stubGenerator{err: errors.New("quota exceeded")}},
		{name: "timeout", gen: &stubGenerator{block: true}},
		{name: "invalid json", gen: &stubGenerator{out: `{"summary": "oops"`}},
		{name: "not an object", gen: &stubGenerator{out: `[1,2,3]`}},
		{name: "missing suggestions", gen: &stubGenerator{out: `{"summary":"s","score":70}`}},
		{name: "empty summary", gen: &stubGenerator{out: `{"summary":"","top_suggestions":["a"]}`}},
		{name: "whitespace summary", gen: &stubGenerator{out: `{"summary":"   ","top_suggestions":["Do X"],"score":70}`}},
		{name: "blank suggestions", gen: &stubGenerator{out: `{"summary":"s","top_suggestions":["  "]}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, base := newAdvisor(t, tt.gen, WithTimeout(20*time.Millisecond))

			res, err := a.Analyze(context.Background(), testProfile())

			require.NoError(t, err)
			assert.Equal(t, base, res)
			assert.Equal(t, model.SourceEngine, res.Source)
		})
	}
}

func TestAnalyze_WithoutGenerator(t *testing.T) {
	a, base := newAdvisor(t, nil)
	assert.False(t, a.AIEnabled())

	res, err := a.Analyze(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, base, res)
}

func TestAnalyze_InvalidInputPropagates(t *testing.T) {
	gen := &stubGenerator{out: `{"summary":"s","top_suggestions":["a"]}`}
	a, _ := newAdvisor(t, gen)

	_, err := a.Analyze(context.Background(), model.NewProfile("   ", nil, nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, scoring.ErrInvalidInput)
	assert.Empty(t, gen.prompt, "generator must not be called for invalid input")
}

func TestAnalyze_CustomBounds(t *testing.T) {
	a, _ := newAdvisor(t, &stubGenerator{out: `{"summary":"s","top_suggestions":["a"],"score":99}`},
		WithScoreBounds(40, 80))

	res, err := a.Analyze(context.Background(), testProfile())

	require.NoError(t, err)
	assert.Equal(t, 80, res.Score)
}

func TestBuildPrompt(t *testing.T) {
	skills := make([]string, 12)
	repos := make([]model.Repository, 12)
	for i := range skills {
		skills[i] = "skill" + string(rune('a'+i))
		repos[i] = model.Repository{Name: "repo" + string(rune('a'+i))}
	}
	prompt := BuildPrompt(model.NewProfile("Data Scientist", skills, repos))

	assert.True(t, strings.HasPrefix(prompt, "You are a concise tech career guide.\nGoal: Data Scientist\n"))
	assert.Contains(t, prompt, "Skills: skilla, skillb")
	assert.Contains(t, prompt, "skillj\n")
	assert.NotContains(t, prompt, "skillk")
	assert.NotContains(t, prompt, "repok")
	assert.Contains(t, prompt, `"top_suggestions"`)
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json code block", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"generic code block", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"single line fence", "```{\"key\": 1}```", `{"key": 1}`},
		{"plain json", `  {"key": "value"} `, `{"key": "value"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestValidateResponse(t *testing.T) {
	err := validateResponse(`{"summary": 3, "top_suggestions": "x"}`)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 2)
	assert.Contains(t, verr.Error(), "summary")

	assert.NoError(t, validateResponse(`{"summary":"s","top_suggestions":["a"],"score":null}`))
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

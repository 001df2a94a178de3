package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
)

type recordingScorer struct {
	got model.Profile
	err error
}

func (r *recordingScorer) Analyze(_ context.Context, p model.Profile) (model.Result, error) {
	r.got = p
	if r.err != nil {
		return model.Result{}, r.err
	}
	return model.Result{Score: 61, Summary: "ok", Suggestions: []string{"x"}, Source: model.SourceEngine}, nil
}

func TestAnalyzeSkills(t *testing.T) {
	t.Run("mixed repository items are normalized", func(t *testing.T) {
		rec := &recordingScorer{}
		s := NewServer(rec)

		out, err := s.handleAnalyzeSkills(context.Background(), json.RawMessage(`{
			"career_goal": " Data Analyst ",
			"skills": ["SQL", " ", "Excel"],
			"repos": ["dashboards", {"name": "etl", "language": null, "stars": -2, "forks": 3}]
		}`))

		require.NoError(t, err)
		assert.Equal(t, 61, out.(model.Result).Score)
		assert.Equal(t, "Data Analyst", rec.got.CareerGoal)
		assert.Equal(t, []string{"SQL", "Excel"}, rec.got.Skills)
		assert.Equal(t, []model.Repository{
			{Name: "dashboards", Language: model.UnknownLanguage},
			{Name: "etl", Language: model.UnknownLanguage, Forks: 3},
		}, rec.got.Repositories)
	})

	t.Run("github field names are accepted", func(t *testing.T) {
		rec := &recordingScorer{}
		s := NewServer(rec)

		_, err := s.handleAnalyzeSkills(context.Background(), json.RawMessage(`{
			"career_goal": "Backend Developer",
			"repos": [{"name": "api", "language": "Go", "stargazers_count": 12, "forks_count": 4}]
		}`))

		require.NoError(t, err)
		assert.Equal(t, []model.Repository{
			{Name: "api", Language: "Go", Stars: 12, Forks: 4},
		}, rec.got.Repositories)
	})

	tests := []struct {
		name string
		args string
	}{
		{name: "missing goal", args: `{"skills":["go"]}`},
		{name: "empty goal", args: `{"career_goal":""}`},
		{name: "skills not strings", args: `{"career_goal":"dev","skills":[1,2]}`},
		{name: "repo wrong type", args: `{"career_goal":"dev","repos":[42]}`},
		{name: "unknown field", args: `{"career_goal":"dev","linkedin":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&recordingScorer{})
			_, err := s.handleAnalyzeSkills(context.Background(), json.RawMessage(tt.args))
			assert.ErrorIs(t, err, ErrInvalidArguments)
		})
	}

	t.Run("analyzer errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		s := NewServer(&recordingScorer{err: boom})
		_, err := s.handleAnalyzeSkills(context.Background(), json.RawMessage(`{"career_goal":"dev"}`))
		assert.ErrorIs(t, err, boom)
	})
}

func TestToolsCall_AnalyzeSkills(t *testing.T) {
	h := startServer(t, NewServer(scoring.NewEngine()))

	resp := h.send(t, `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"analyze_skills","arguments":{"career_goal":"AI Engineer","skills":["Python","TensorFlow"],"repos":[]}}}`)

	result := resp["result"].(map[string]any)
	assert.Equal(t, false, result["isError"])

	var res model.Result
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &res))
	want, err := scoring.NewEngine().Analyze(context.Background(),
		model.NewProfile("AI Engineer", []string{"Python", "TensorFlow"}, nil))
	require.NoError(t, err)
	assert.Equal(t, want, res)

	t.Run("blank goal is reported as a tool error", func(t *testing.T) {
		resp := h.send(t, `{"jsonrpc":"2.0","id":8,"method":"tools/call","params":{"name":"analyze_skills","arguments":{"career_goal":"   "}}}`)
		result := resp["result"].(map[string]any)
		assert.Equal(t, true, result["isError"])
		assert.Contains(t, toolText(t, result), "career goal is required")
	})
}

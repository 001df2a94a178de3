package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

// ErrInvalidArguments is returned when tool arguments fail schema validation.
var ErrInvalidArguments = errors.New("invalid arguments")

const analyzeSkillsSchema = `{
  "type": "object",
  "required": ["career_goal"],
  "properties": {
    "career_goal": {"type": "string", "minLength": 1, "maxLength": 500, "description": "Target role, e.g. \"Machine Learning Engineer\""},
    "skills": {
      "type": "array",
      "maxItems": 200,
      "items": {"type": "string"},
      "description": "Current skills"
    },
    "repos": {
      "type": "array",
      "maxItems": 100,
      "description": "Repository names or objects with name, language, stars (or stargazers_count) and forks (or forks_count)",
      "items": {
        "oneOf": [
          {"type": "string"},
          {
            "type": "object",
            "properties": {
              "name": {"type": "string"},
              "language": {"type": ["string", "null"]},
              "stars": {"type": "integer"},
              "forks": {"type": "integer"},
              "stargazers_count": {"type": "integer"},
              "forks_count": {"type": "integer"},
              "description": {"type": ["string", "null"]}
            }
          }
        ]
      }
    }
  },
  "additionalProperties": false
}`

var analyzeSkillsLoader = gojsonschema.NewStringLoader(analyzeSkillsSchema) //nolint:gochecknoglobals // immutable schema

// analyzeSkillsArgs are the decoded analyze_skills arguments.
type analyzeSkillsArgs struct {
	CareerGoal string            `json:"career_goal"`
	Skills     []string          `json:"skills"`
	Repos      []json.RawMessage `json:"repos"`
}

func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "analyze_skills",
		Description: "Score career readiness for a goal from skills and GitHub repositories, with a summary and suggestions.",
		InputSchema: json.RawMessage(analyzeSkillsSchema),
		Handler:     s.handleAnalyzeSkills,
	})
}

func (s *Server) handleAnalyzeSkills(ctx context.Context, args json.RawMessage) (any, error) {
	if err := validateArgs(analyzeSkillsLoader, args); err != nil {
		return nil, err
	}

	var in analyzeSkillsArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}

	repos := make([]model.Repository, 0, len(in.Repos))
	for _, raw := range in.Repos {
		r, ok, err := model.DecodeRepository(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: repos: %w", ErrInvalidArguments, err)
		}
		if ok {
			repos = append(repos, r)
		}
	}

	res, err := s.analyzer.Analyze(ctx, model.NewProfile(in.CareerGoal, in.Skills, repos))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func validateArgs(schema gojsonschema.JSONLoader, args json.RawMessage) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArguments, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(msgs, "; "))
}

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRepository is returned for JSON that is neither a repository name
// nor a repository object.
var ErrInvalidRepository = errors.New("repository must be a name or a repository object")

// RepositoryInput is the JSON shape accepted for a repository. It takes both
// the short field names and GitHub's own; the short ones win when both are set.
type RepositoryInput struct {
	Name            string  `json:"name"`
	Language        *string `json:"language"`
	Stars           *int    `json:"stars"`
	Forks           *int    `json:"forks"`
	StargazersCount *int    `json:"stargazers_count"`
	ForksCount      *int    `json:"forks_count"`
	Description     *string `json:"description"`
}

// Repository converts the input. The result is not normalized.
func (in RepositoryInput) Repository() Repository {
	r := Repository{Name: in.Name}
	if in.Language != nil {
		r.Language = *in.Language
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	switch {
	case in.Stars != nil:
		r.Stars = *in.Stars
	case in.StargazersCount != nil:
		r.Stars = *in.StargazersCount
	}
	switch {
	case in.Forks != nil:
		r.Forks = *in.Forks
	case in.ForksCount != nil:
		r.Forks = *in.ForksCount
	}
	return r
}

// DecodeRepository decodes a repository name or RepositoryInput object.
// ok is false for JSON null, which callers skip.
func DecodeRepository(raw []byte) (r Repository, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return Repository{}, false, nil
	case raw[0] == '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return Repository{}, false, fmt.Errorf("%w: %w", ErrInvalidRepository, err)
		}
		return Repository{Name: name}, true, nil
	case raw[0] == '{':
		var in RepositoryInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return Repository{}, false, fmt.Errorf("%w: %w", ErrInvalidRepository, err)
		}
		return in.Repository(), true, nil
	default:
		return Repository{}, false, ErrInvalidRepository
	}
}

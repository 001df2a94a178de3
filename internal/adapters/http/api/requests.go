package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

// analyzeRequest mirrors the OpenAPI schema shared by POST /analyze and
// POST /analyses.
type analyzeRequest struct {
	CareerGoal     string    `json:"career_goal" validate:"max=500"`
	GithubRepos    repoList  `json:"github_repos" validate:"max=100,dive"`
	LinkedinSkills skillList `json:"linkedin_skills" validate:"max=200,dive,max=100"`
	RequestID      string    `json:"request_id" validate:"omitempty,max=128,printascii"`
}

func (req *analyzeRequest) profile() model.Profile {
	return model.NewProfile(req.CareerGoal, req.LinkedinSkills, req.GithubRepos)
}

// repoList decodes an array whose items are repository names or objects.
type repoList []model.Repository

func (l *repoList) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*l = nil
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return errors.New("github_repos must be an array")
	}
	out := make(repoList, 0, len(items))
	for i, raw := range items {
		r, ok, err := model.DecodeRepository(raw)
		if err != nil {
			return fmt.Errorf("github_repos[%d] must be a name or a repository object", i)
		}
		if ok {
			out = append(out, r)
		}
	}
	*l = out
	return nil
}

// skillList decodes an array of strings or one comma-separated string.
type skillList []string

func (l *skillList) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*l = nil
		return nil
	}
	var csv string
	if err := json.Unmarshal(b, &csv); err == nil {
		*l = model.ParseSkills(csv)
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return errors.New("linkedin_skills must be an array of strings or a comma-separated string")
	}
	*l = items
	return nil
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

// decodeAnalyzeRequest reads, decodes and validates the request body. An
// empty body decodes as an empty request.
func (s *Server) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request, op string) (analyzeRequest, error) {
	var req analyzeRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, WrapKindf(op, ErrBadRequest, "request body exceeds %d bytes", tooLarge.Limit)
		}
		var syntax *json.SyntaxError
		if errors.As(err, &syntax) {
			return req, WrapKindf(op, ErrBadRequest, "invalid JSON body")
		}
		return req, WrapKind(op, ErrBadRequest, err)
	}
	if strings.TrimSpace(req.CareerGoal) == "" {
		return req, WrapKindf(op, ErrBadRequest, "career_goal is required")
	}
	if err := s.validate.Struct(&req); err != nil {
		return req, WrapKind(op, ErrBadRequest, describeValidation(err))
	}
	return req, nil
}

// describeValidation turns validator errors into a single readable message.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s%s", jsonFieldPath(fe), fe.Tag(), paramSuffix(fe.Param())))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func paramSuffix(p string) string {
	if p == "" {
		return ""
	}
	return "=" + p
}

// jsonFieldPath rewrites "analyzeRequest.LinkedinSkills[3]" using the
// JSON names of analyzeRequest.
func jsonFieldPath(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	name, index, _ := strings.Cut(ns, "[")
	if f, ok := reflect.TypeOf(analyzeRequest{}).FieldByName(name); ok {
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
			name = tag
		}
	}
	if index != "" {
		return name + "[" + index
	}
	return name
}

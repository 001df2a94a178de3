package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/caffinecoder/skillnav/internal/domain/model"
)

func TestAnalyzeRequest_Decode(t *testing.T) {
	Convey("Given analyze request bodies", t, func() {
		Convey("linkedin_skills accepts an array", func() {
			var req analyzeRequest
			So(json.Unmarshal([]byte(`{"linkedin_skills":["Go"," SQL "]}`), &req), ShouldBeNil)
			So([]string(req.LinkedinSkills), ShouldResemble, []string{"Go", " SQL "})
		})

		Convey("linkedin_skills accepts a comma-separated string", func() {
			var req analyzeRequest
			So(json.Unmarshal([]byte(`{"linkedin_skills":"Go, SQL,,"}`), &req), ShouldBeNil)
			So([]string(req.LinkedinSkills), ShouldResemble, []string{"Go", "SQL"})
		})

		Convey("linkedin_skills rejects numbers", func() {
			var req analyzeRequest
			So(json.Unmarshal([]byte(`{"linkedin_skills":42}`), &req), ShouldNotBeNil)
		})

		Convey("github_repos mixes names, objects and nulls", func() {
			var req analyzeRequest
			err := json.Unmarshal([]byte(`{"github_repos":[
				"cli",
				null,
				{"name":"api","language":"Go","stars":5,"forks":2,"description":"rest"},
				{"name":"gh","language":null,"stargazers_count":7,"forks_count":1}
			]}`), &req)
			So(err, ShouldBeNil)
			So([]model.Repository(req.GithubRepos), ShouldResemble, []model.Repository{
				{Name: "cli"},
				{Name: "api", Language: "Go", Stars: 5, Forks: 2, Description: "rest"},
				{Name: "gh", Stars: 7, Forks: 1},
			})
		})

		Convey("github_repos rejects non-arrays", func() {
			var req analyzeRequest
			So(json.Unmarshal([]byte(`{"github_repos":"cli"}`), &req), ShouldNotBeNil)
		})

		Convey("null fields decode as empty", func() {
			var req analyzeRequest
			So(json.Unmarshal([]byte(`{"github_repos":null,"linkedin_skills":null}`), &req), ShouldBeNil)
			So(req.GithubRepos, ShouldBeNil)
			So(req.LinkedinSkills, ShouldBeNil)
		})
	})
}

func TestDecodeAnalyzeRequest_Validation(t *testing.T) {
	Convey("Given a server", t, func() {
		s := NewServer(nil, WithMaxBodyBytes(2048))
		decodeBody := func(body string) error {
			r := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
			_, err := s.decodeAnalyzeRequest(httptest.NewRecorder(), r, "test")
			return err
		}

		Convey("A valid body passes", func() {
			So(decodeBody(`{"career_goal":"ML Engineer","linkedin_skills":["Python"]}`), ShouldBeNil)
		})

		Convey("Too long a goal is a bad request naming the JSON field", func() {
			err := decodeBody(`{"career_goal":"` + strings.Repeat("a", 501) + `"}`)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "career_goal")
		})

		Convey("Overlong skills name their index", func() {
			err := decodeBody(`{"career_goal":"x","linkedin_skills":["ok","` + strings.Repeat("b", 101) + `"]}`)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "linkedin_skills[1]")
		})

		Convey("Oversized bodies are rejected", func() {
			err := decodeBody(`{"career_goal":"` + strings.Repeat("c", 4096) + `"}`)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "exceeds")
		})

		Convey("Non-printable request IDs are rejected", func() {
			err := decodeBody(`{"career_goal":"x","request_id":"a\u0001b"}`)
			So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
		})
	})
}

func TestStatusFor(t *testing.T) {
	Convey("Given classified errors", t, func() {
		So(first(statusFor(NewKind("op", ErrBadRequest))), ShouldEqual, http.StatusBadRequest)
		So(first(statusFor(WrapKind("op", ErrUnauthorized, errors.New("x")))), ShouldEqual, http.StatusUnauthorized)
		So(first(statusFor(NewKind("op", ErrNotFound))), ShouldEqual, http.StatusNotFound)
		So(first(statusFor(NewKind("op", ErrBackpressure))), ShouldEqual, http.StatusTooManyRequests)
		So(first(statusFor(NewKind("op", ErrUpstream))), ShouldEqual, http.StatusBadGateway)
		So(first(statusFor(NewKind("op", ErrUnavailable))), ShouldEqual, http.StatusServiceUnavailable)
		So(first(statusFor(errors.New("other"))), ShouldEqual, http.StatusInternalServerError)

		Convey("Wrapped errors keep their cause message", func() {
			err := WrapKindf("op", ErrBadRequest, "field %s", "x")
			So(err.Error(), ShouldEqual, "field x")
			So(NewKind("op", ErrNotFound).Error(), ShouldEqual, "not found")
		})
	})
}

func first(status int, _ string) int { return status }

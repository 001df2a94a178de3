package loadtest

import (
	"fmt"

	"github.com/google/uuid"
)

// Request is the JSON body sent to /analyze and /analyses.
type Request struct {
	CareerGoal     string `json:"career_goal"`
	GithubRepos    []Repo `json:"github_repos"`
	LinkedinSkills string `json:"linkedin_skills"`
	RequestID      string `json:"request_id,omitempty"`
}

// Repo is a repository entry of Request.
type Repo struct {
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Stars    int    `json:"stars"`
	Forks    int    `json:"forks"`
}

var (
	goals = []string{
		"Machine Learning Engineer",
		"Senior Frontend Web Developer",
		"Data Analyst",
		"Android Mobile Developer",
		"Cloud DevOps Architect",
		"Product Manager",
	}
	skillSets = []string{
		"Python, TensorFlow, SQL, Docker",
		"JavaScript, React, Node, CSS, HTML, TypeScript",
		"SQL, Excel, Tableau, pandas",
		"Kotlin, Java",
		"Go, Kubernetes, Terraform, AWS, Linux, Bash, Python, Ansible",
		"",
	}
	languages = []string{"Python", "JavaScript", "Go", "Kotlin", ""}
)

// generateRequests builds n requests cycling through a fixed set of
// profiles. Request IDs are unique per run.
func generateRequests(n int) []Request {
	run := uuid.NewString()
	out := make([]Request, n)
	for i := range out {
		repos := make([]Repo, i%7)
		for j := range repos {
			repos[j] = Repo{
				Name:     fmt.Sprintf("project-%d", j),
				Language: languages[(i+j)%len(languages)],
				Stars:    (i * (j + 1)) % 40,
				Forks:    (i + j) % 9,
			}
		}
		out[i] = Request{
			CareerGoal:     goals[i%len(goals)],
			GithubRepos:    repos,
			LinkedinSkills: skillSets[i%len(skillSets)],
			RequestID:      fmt.Sprintf("%s-%d", run, i),
		}
	}
	return out
}

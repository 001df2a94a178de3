package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/caffinecoder/skillnav/internal/app"
	"github.com/caffinecoder/skillnav/internal/domain/model"
	"github.com/caffinecoder/skillnav/internal/domain/scoring"
	"github.com/caffinecoder/skillnav/internal/output"
	"github.com/caffinecoder/skillnav/pkg/logger"
)

var (
	analyzeFlagGoal      string
	analyzeFlagSkills    string
	analyzeFlagGitHub    string
	analyzeFlagReposFile string
	analyzeFlagJSON      bool
	analyzeFlagExplain   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score career readiness for a goal",
	Long: `Analyze runs the readiness analyzer in-process. Repositories come from
a JSON file (an array of names or objects with name, language, stars and
forks) and/or a public GitHub account. When an AI key is configured the
AI advisor is used, falling back to the rule based engine.`,
	Example: `  skillnav analyze --goal "Machine Learning Engineer" --skills "Python, SQL"
  skillnav analyze --goal "Web Developer" --github octocat --explain
  skillnav analyze --goal "Data Analyst" --repos-file repos.json --json`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFlagGoal, "goal", "", "Career goal, e.g. \"Data Analyst\" (required)")
	analyzeCmd.Flags().StringVar(&analyzeFlagSkills, "skills", "", "Comma separated skills")
	analyzeCmd.Flags().StringVar(&analyzeFlagGitHub, "github", "", "GitHub username whose public repositories are included")
	analyzeCmd.Flags().StringVar(&analyzeFlagReposFile, "repos-file", "", "JSON file with repositories")
	analyzeCmd.Flags().BoolVar(&analyzeFlagJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeFlagExplain, "explain", false, "Include the rule based score breakdown")
	_ = analyzeCmd.MarkFlagRequired("goal")

	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOutput is the --json document.
type analyzeOutput struct {
	model.Result
	Breakdown *scoring.Breakdown `json:"breakdown,omitempty"`
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	var repos []model.Repository
	if analyzeFlagReposFile != "" {
		repos, err = readReposFile(analyzeFlagReposFile)
		if err != nil {
			return err
		}
	}
	if analyzeFlagGitHub != "" {
		fetched, err := service.NewGitHubClient(cfg, log).Repositories(ctx, analyzeFlagGitHub)
		if err != nil {
			return fmt.Errorf("fetching repositories for %s: %w", analyzeFlagGitHub, err)
		}
		repos = append(repos, fetched...)
	}

	profile := model.NewProfile(analyzeFlagGoal, model.ParseSkills(analyzeFlagSkills), repos)

	analyzer, closeFn, err := service.NewAnalyzer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			log.Warn(ctx, "close analyzer", logger.Error(err))
		}
	}()

	res, err := analyzer.Analyze(ctx, profile)
	if err != nil {
		return err
	}

	var breakdown *scoring.Breakdown
	if analyzeFlagExplain {
		b, err := service.NewEngine(cfg).Explain(profile)
		if err != nil {
			return err
		}
		breakdown = &b
	}

	out := cmd.OutOrStdout()
	if analyzeFlagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(analyzeOutput{Result: res, Breakdown: breakdown})
	}

	output.RenderResult(out, res, output.Options{
		Animate:   output.IsTerminal(out),
		Breakdown: breakdown,
		Goal:      profile.CareerGoal,
	})
	return nil
}

var errReposFile = errors.New("repos file must be a JSON array of names or repository objects")

// readReposFile loads repositories from path; "-" reads stdin.
func readReposFile(path string) ([]model.Repository, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading repos file: %w", err)
	}
	return parseRepos(data)
}

func parseRepos(data []byte) ([]model.Repository, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", errReposFile, err)
	}
	repos := make([]model.Repository, 0, len(items))
	for i, raw := range items {
		r, ok, err := model.DecodeRepository(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", errReposFile, i, err)
		}
		if ok {
			repos = append(repos, r)
		}
	}
	return repos, nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/report"
	"github.com/abhisek/sociogram/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <survey-id>",
	Short: "Print the score, reciprocity and distribution report of a survey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, _ := cmd.Flags().GetBool("markdown")

		th := settings.Thresholds()
		if cmd.Flags().Changed("high") {
			th.High, _ = cmd.Flags().GetInt("high")
		}
		if cmd.Flags().Changed("low") {
			th.Low, _ = cmd.Flags().GetInt("low")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		sc, res, err := analyzeSurvey(cmd.Context(), s, args[0], th)
		if err != nil {
			return err
		}

		printOut(cmd, report.Analysis(res, report.Options{
			Mode:  report.ParseMode(markdown),
			Title: fmt.Sprintf("%s: %s", sc.Class.Name, sc.Survey.Name),
		}))
		return nil
	},
}

// analyzeSurvey loads a survey snapshot and runs the analysis pipeline.
func analyzeSurvey(ctx context.Context, s *store.Store, surveyID string, th analysis.Thresholds) (*surveyContext, *analysis.Result, error) {
	sc, err := loadSurvey(ctx, s, surveyID)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.ResponseRepo().ListBySurvey(ctx, sc.Survey.ID)
	if err != nil {
		return nil, nil, err
	}

	res, err := analysis.Analyze(responses, sc.Roster, analysis.Options{Thresholds: th})
	if err != nil {
		return nil, nil, err
	}

	st := res.Stats
	slog.Debug("normalized responses",
		"survey", sc.Survey.ID,
		"responses", len(responses),
		"records", len(res.Records),
		"malformed", st.Malformed,
		"unknown_peers", st.UnknownPeers,
		"invalid_scores", st.InvalidScores,
		"self_ratings", st.SelfRatings,
		"unknown_submitters", st.UnknownSubmitters,
		"duplicates", st.Duplicates,
	)
	return sc, res, nil
}

func init() {
	analyzeCmd.Flags().Bool("markdown", false, "Render Markdown instead of terminal tables")
	analyzeCmd.Flags().Int("high", 75, "Score at or above which a rating counts as high")
	analyzeCmd.Flags().Int("low", 35, "Score at or below which a rating counts as low")
}

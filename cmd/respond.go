package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/report"
	"github.com/abhisek/sociogram/internal/survey"
)

var respondCmd = &cobra.Command{
	Use:   "respond <survey-id>",
	Short: "Record one student's survey response",
	Long: "Record one student's survey response. Rate classmates with repeated\n" +
		"--rate <name-or-id>=<0-100> flags; the free-text answers are optional.",
	Example: `  sociogram respond 5f1c... --student Ana --rate Bob=80 --rate Cy=90 --praise Bob`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, _ := cmd.Flags().GetString("student")
		rates, _ := cmd.Flags().GetStringArray("rate")
		praise, _ := cmd.Flags().GetString("praise")
		difficult, _ := cmd.Flags().GetString("difficult")
		concern, _ := cmd.Flags().GetString("concern")
		message, _ := cmd.Flags().GetString("message")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		sc, err := loadSurvey(ctx, s, args[0])
		if err != nil {
			return err
		}
		if sc.Survey.State != survey.StateOpen {
			slog.Warn("recording a response for a survey that is not open", "survey", sc.Survey.ID, "state", sc.Survey.State)
		}

		submitter, err := sc.student(who)
		if err != nil {
			return err
		}

		scores := make(map[string]int, len(rates))
		order := make([]string, 0, len(rates))
		for _, r := range rates {
			peer, score, err := parseRate(r)
			if err != nil {
				return err
			}
			st, err := sc.student(peer)
			if err != nil {
				return err
			}
			if st.ID == submitter.ID {
				return fmt.Errorf("%s cannot rate themselves", st.Name)
			}
			if _, dup := scores[st.ID]; dup {
				return fmt.Errorf("%s is rated more than once", st.Name)
			}
			scores[st.ID] = score
			order = append(order, st.ID)
		}

		resp := &survey.Response{
			SurveyID:    sc.Survey.ID,
			SubmitterID: submitter.ID,
			Ratings:     survey.EncodeRatings(scores, order),
			FreeText: survey.FreeText{
				PraiseFriend:    praise,
				DifficultFriend: difficult,
				Concern:         concern,
				TeacherMessage:  message,
			},
		}
		if err := s.ResponseRepo().Submit(ctx, resp); err != nil {
			return err
		}
		printLine(cmd, "%s from %s (%d ratings)", report.OK("Recorded response"), submitter.Name, len(scores))
		return nil
	},
}

// parseRate splits "name=score" and checks the score range.
func parseRate(s string) (peer string, score int, err error) {
	i := strings.LastIndex(s, "=")
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid --rate %q: want <name-or-id>=<score>", s)
	}
	peer = strings.TrimSpace(s[:i])
	score, err = strconv.Atoi(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return "", 0, fmt.Errorf("invalid score in --rate %q: %w", s, err)
	}
	if score < analysis.MinScore || score > analysis.MaxScore {
		return "", 0, fmt.Errorf("score %d for %s is outside %d-%d", score, peer, analysis.MinScore, analysis.MaxScore)
	}
	return peer, score, nil
}

func init() {
	respondCmd.Flags().StringP("student", "s", "", "Responding student (name or ID)")
	respondCmd.Flags().StringArrayP("rate", "r", nil, "Closeness rating <classmate>=<0-100>, repeatable")
	respondCmd.Flags().String("praise", "", "A classmate the student wants to praise")
	respondCmd.Flags().String("difficult", "", "A classmate the student finds hard to get along with")
	respondCmd.Flags().String("concern", "", "The student's own worry")
	respondCmd.Flags().String("message", "", "Anything else for the teacher")
	_ = respondCmd.MarkFlagRequired("student")
}

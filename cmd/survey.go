package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/sociogram/internal/report"
	"github.com/abhisek/sociogram/internal/survey"
)

var surveyCmd = &cobra.Command{
	Use:   "survey",
	Short: "Manage surveys",
}

var surveyCreateCmd = &cobra.Command{
	Use:   "create <class> <name>",
	Short: "Create a survey for a class",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		c, err := findClass(ctx, s.ClassRepo(), args[0])
		if err != nil {
			return err
		}

		sv := &survey.Survey{ClassID: c.ID, Name: args[1], Description: desc}
		if err := s.SurveyRepo().Create(ctx, sv); err != nil {
			return err
		}
		printLine(cmd, "%s %s for %s (%s)", report.OK("Created survey"), sv.Name, c.Name, sv.ID)
		return nil
	},
}

var surveyListCmd = &cobra.Command{
	Use:   "list <class>",
	Short: "List the surveys of a class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		c, err := findClass(ctx, s.ClassRepo(), args[0])
		if err != nil {
			return err
		}
		surveys, err := s.SurveyRepo().ListByClass(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(surveys) == 0 {
			printLine(cmd, "No surveys for %s.", c.Name)
			return nil
		}

		t := report.NewTable(report.ASCII)
		t.Header("ID", "Name", "State", "Responses", "Created")
		t.AlignRight(4)
		for _, sv := range surveys {
			responses, err := s.ResponseRepo().ListBySurvey(ctx, sv.ID)
			if err != nil {
				return err
			}
			t.Row(sv.ID, sv.Name, string(sv.State), len(responses), sv.CreatedAt.Local().Format("2006-01-02"))
		}
		printLine(cmd, "%s", t.String())
		return nil
	},
}

func newSurveyStateCmd(use, short string, state survey.State) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <survey-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SurveyRepo().SetState(cmd.Context(), args[0], state); err != nil {
				return err
			}
			printLine(cmd, "Survey %s is now %s", args[0], state)
			return nil
		},
	}
}

func init() {
	surveyCreateCmd.Flags().String("description", "", "Instructions shown with the survey")

	surveyCmd.AddCommand(surveyCreateCmd)
	surveyCmd.AddCommand(surveyListCmd)
	surveyCmd.AddCommand(newSurveyStateCmd("open", "Start accepting responses", survey.StateOpen))
	surveyCmd.AddCommand(newSurveyStateCmd("close", "Stop accepting responses", survey.StateClosed))
}

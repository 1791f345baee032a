package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/sociogram/internal/report"
	"github.com/abhisek/sociogram/internal/survey"
)

var classCmd = &cobra.Command{
	Use:   "class",
	Short: "Manage classes",
}

var classCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a class",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		teacher, _ := cmd.Flags().GetString("teacher")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		c := &survey.Class{Name: args[0], Teacher: teacher}
		if err := s.ClassRepo().Create(cmd.Context(), c); err != nil {
			return err
		}
		printLine(cmd, "%s %s (%s)", report.OK("Created class"), c.Name, c.ID)
		return nil
	},
}

var classListCmd = &cobra.Command{
	Use:   "list",
	Short: "List classes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		classes, err := s.ClassRepo().List(ctx)
		if err != nil {
			return err
		}
		if len(classes) == 0 {
			printLine(cmd, "No classes yet. Create one with: sociogram class create <name>")
			return nil
		}

		t := report.NewTable(report.ASCII)
		t.Header("ID", "Name", "Teacher", "Students", "Created")
		t.AlignRight(4)
		for _, c := range classes {
			students, err := s.ClassRepo().Students(ctx, c.ID)
			if err != nil {
				return err
			}
			t.Row(c.ID, c.Name, c.Teacher, len(students), c.CreatedAt.Local().Format("2006-01-02"))
		}
		printLine(cmd, "%s", t.String())
		return nil
	},
}

var classShowCmd = &cobra.Command{
	Use:   "show <class>",
	Short: "Show a class roster and its surveys",
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
		students, err := s.ClassRepo().Students(ctx, c.ID)
		if err != nil {
			return err
		}
		surveys, err := s.SurveyRepo().ListByClass(ctx, c.ID)
		if err != nil {
			return err
		}

		printLine(cmd, "%s", report.TitleStyle.Render(c.Name))
		if c.Teacher != "" {
			printLine(cmd, "Teacher: %s", c.Teacher)
		}
		printLine(cmd, "ID:      %s\n", c.ID)

		if len(students) == 0 {
			printLine(cmd, "%s\n", report.Hint("No students yet."))
		} else {
			t := report.NewTable(report.ASCII)
			t.Header("#", "Name", "ID")
			t.AlignRight(1)
			for i, st := range students {
				t.Row(i+1, st.Name, st.ID)
			}
			printLine(cmd, "%s\n", t.String())
		}

		if len(surveys) == 0 {
			printLine(cmd, "%s", report.Hint("No surveys yet."))
			return nil
		}
		t := report.NewTable(report.ASCII)
		t.Header("Survey", "Name", "State", "Created")
		for _, sv := range surveys {
			t.Row(sv.ID, sv.Name, string(sv.State), sv.CreatedAt.Local().Format("2006-01-02"))
		}
		printLine(cmd, "%s", t.String())
		return nil
	},
}

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage class rosters",
}

var studentAddCmd = &cobra.Command{
	Use:   "add <class> <name>...",
	Short: "Add students to a class roster, in order",
	Args:  cobra.MinimumNArgs(2),
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

		existing, err := s.ClassRepo().Students(ctx, c.ID)
		if err != nil {
			return err
		}
		taken := make(map[string]bool, len(existing))
		for _, st := range existing {
			taken[st.Name] = true
		}

		var students []survey.Student
		for _, name := range args[1:] {
			if taken[name] {
				return fmt.Errorf("%s already has a student named %q", c.Name, name)
			}
			taken[name] = true
			students = append(students, survey.Student{Name: name})
		}

		if err := s.ClassRepo().AddStudents(ctx, c.ID, students); err != nil {
			return err
		}
		for _, st := range students {
			printLine(cmd, "%s %s (%s)", report.OK("Added"), st.Name, st.ID)
		}
		return nil
	},
}

func init() {
	classCreateCmd.Flags().String("teacher", "", "Homeroom teacher")

	classCmd.AddCommand(classCreateCmd)
	classCmd.AddCommand(classListCmd)
	classCmd.AddCommand(classShowCmd)

	studentCmd.AddCommand(studentAddCmd)
}

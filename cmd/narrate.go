package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/sociogram/internal/analysis"
	"github.com/abhisek/sociogram/internal/cache"
	"github.com/abhisek/sociogram/internal/config"
	"github.com/abhisek/sociogram/internal/llm"
	"github.com/abhisek/sociogram/internal/narrative"
	"github.com/abhisek/sociogram/internal/report"
	"github.com/abhisek/sociogram/internal/store"
)

// newProvider builds the model client. Tests replace it.
var newProvider = llm.NewProvider

var narrateCmd = &cobra.Command{
	Use:   "narrate <survey-id>",
	Short: "Draft narratives about a student, the whole class or the students' concerns",
	Long: "Draft narratives with the configured language model. Results are cached;\n" +
		"pass --refresh to regenerate. Without a selector the class narrative is shown.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, _ := cmd.Flags().GetString("student")
		all, _ := cmd.Flags().GetBool("all")
		concerns, _ := cmd.Flags().GetBool("concerns")
		refresh, _ := cmd.Flags().GetBool("refresh")
		markdown, _ := cmd.Flags().GetBool("markdown")
		mode := report.ParseMode(markdown)

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		sc, res, err := analyzeSurvey(ctx, s, args[0], settings.Thresholds())
		if err != nil {
			return err
		}

		svc, closeSvc, err := newNarrativeService(ctx, s, true)
		if err != nil {
			return err
		}
		defer closeSvc()

		base := narrative.Request{
			SurveyID: sc.Survey.ID,
			Refresh:  refresh,
			Prompt: narrative.PromptOptions{
				ClassName:  sc.Class.Name,
				SurveyName: sc.Survey.Name,
			},
		}

		switch {
		case all:
			return narrateAll(cmd, svc, base, res, mode)
		case who != "":
			st, err := sc.student(who)
			if err != nil {
				return err
			}
			req := base
			req.Kind, req.StudentID = narrative.KindStudent, st.ID
			n, err := svc.Generate(ctx, req, res)
			if err != nil {
				return err
			}
			printOut(cmd, report.Narrative(n, st.Name, mode))
		case concerns:
			req := base
			req.Kind = narrative.KindConcerns
			n, err := svc.Generate(ctx, req, res)
			if err != nil {
				return err
			}
			printOut(cmd, report.Narrative(n, "Concerns", mode))
		default:
			req := base
			req.Kind = narrative.KindClass
			n, err := svc.Generate(ctx, req, res)
			if err != nil {
				return err
			}
			printOut(cmd, report.Narrative(n, sc.Class.Name, mode))
		}
		return nil
	},
}

// narrateAll generates every respondent's narrative with at most
// narrative.parallel requests in flight. One student's failure does not
// stop the others.
func narrateAll(cmd *cobra.Command, svc *narrative.Service, base narrative.Request, res *analysis.Result, mode report.Mode) error {
	students := res.Roster.Students()
	results := make([]*narrative.Narrative, len(students))
	failures := make([]error, len(students))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(settings.Narrative.Parallel)
	for i, st := range students {
		g.Go(func() error {
			req := base
			req.Kind, req.StudentID = narrative.KindStudent, st.ID
			n, err := svc.Generate(ctx, req, res)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, st := range students {
		if failures[i] != nil {
			failed++
			printLine(cmd, "%s %s: %v\n", report.Fail("Failed"), st.Name, failures[i])
			continue
		}
		printOut(cmd, report.Narrative(results[i], st.Name, mode))
		printLine(cmd, "")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d narratives failed", failed, len(students))
	}
	return nil
}

// newNarrativeService wires the provider chain and cache backend from
// settings. Without credentials the service serves cached narratives only.
func newNarrativeService(ctx context.Context, s *store.Store, withProvider bool) (*narrative.Service, func(), error) {
	logger := slog.Default()
	closeFn := func() {}

	var repo store.NarrativeRepo
	switch settings.Cache.Backend {
	case config.CacheSQLite:
		repo = s.NarrativeRepo()
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: settings.Cache.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", settings.Cache.RedisAddr, err)
		}
		repo = cache.NewNarrativeCache(client, settings.Cache.TTL, logger)
		closeFn = func() { client.Close() }
	case config.CacheNone:
	}

	var provider llm.Provider
	if withProvider {
		lc, ok := settings.LLMSettings()
		if ok {
			p, err := newProvider(ctx, lc, s.EventRepo(), logger)
			if err != nil {
				closeFn()
				return nil, nil, err
			}
			provider = p
		} else {
			logger.Warn("no LLM credentials found; only cached narratives are available",
				"provider", lc.Provider, "error", lc.Validate())
		}
	}

	return narrative.NewService(provider, repo, settings.NarrativeSettings(), logger), closeFn, nil
}

var narrateAnnotateCmd = &cobra.Command{
	Use:   "annotate <survey-id> <note>",
	Short: "Attach a teacher note to a cached narrative",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, _ := cmd.Flags().GetString("student")
		kindFlag, _ := cmd.Flags().GetString("kind")

		kind, err := narrative.ParseKind(kindFlag)
		if err != nil {
			return err
		}
		if who != "" {
			kind = narrative.KindStudent
		}

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

		var studentID, label string
		switch kind {
		case narrative.KindStudent:
			if who == "" {
				return errors.New("--student is required for student narratives")
			}
			st, err := sc.student(who)
			if err != nil {
				return err
			}
			studentID, label = st.ID, st.Name
		default:
			label = string(kind)
		}

		svc, closeSvc, err := newNarrativeService(ctx, s, false)
		if err != nil {
			return err
		}
		defer closeSvc()

		if err := svc.Annotate(ctx, sc.Survey.ID, kind, studentID, args[1]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no cached %s narrative to annotate; run narrate first", label)
			}
			return err
		}
		printLine(cmd, "%s to the %s narrative", report.OK("Added note"), label)
		return nil
	},
}

var narrateListCmd = &cobra.Command{
	Use:   "list <survey-id>",
	Short: "Show every cached narrative of a survey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markdown, _ := cmd.Flags().GetBool("markdown")

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
		svc, closeSvc, err := newNarrativeService(ctx, s, false)
		if err != nil {
			return err
		}
		defer closeSvc()

		cached, err := svc.Cached(ctx, sc.Survey.ID)
		if err != nil {
			return err
		}
		if len(cached) == 0 {
			printLine(cmd, "No cached narratives for %s.", sc.Survey.Name)
			return nil
		}
		for i := range cached {
			n := &cached[i]
			heading := string(n.Kind)
			if n.Kind == narrative.KindStudent {
				heading = narrative.DisplayName(sc.Roster, n.StudentID)
			}
			printOut(cmd, report.Narrative(n, heading, report.ParseMode(markdown)))
			printLine(cmd, "")
		}
		return nil
	},
}

func init() {
	narrateCmd.Flags().StringP("student", "s", "", "Narrative for one student (name or ID)")
	narrateCmd.Flags().Bool("all", false, "Narratives for every student on the roster")
	narrateCmd.Flags().Bool("class", false, "Class-wide narrative (default)")
	narrateCmd.Flags().Bool("concerns", false, "Summary of the students' free-text concerns")
	narrateCmd.Flags().Bool("refresh", false, "Regenerate even if a cached narrative exists")
	narrateCmd.Flags().Bool("markdown", false, "Render Markdown")
	narrateCmd.MarkFlagsMutuallyExclusive("student", "all", "class", "concerns")

	narrateAnnotateCmd.Flags().StringP("student", "s", "", "Annotate a student narrative (name or ID)")
	narrateAnnotateCmd.Flags().String("kind", string(narrative.KindClass), "Narrative kind: class or concerns")

	narrateListCmd.Flags().Bool("markdown", false, "Render Markdown")

	narrateCmd.AddCommand(narrateAnnotateCmd)
	narrateCmd.AddCommand(narrateListCmd)
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sociogram/internal/llm"
	"github.com/abhisek/sociogram/internal/report"
	"github.com/abhisek/sociogram/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			printLine(cmd, "No LLM events found.")
			return nil
		}

		t := report.NewTable(report.ASCII)
		t.Header("ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		t.AlignRight(1, 5, 6, 7)
		for _, e := range events {
			ok := report.OK("✓")
			if !e.Success {
				ok = report.Fail("✗")
			}
			t.Row(e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		printLine(cmd, "%s", t.String())
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		sep := strings.Repeat("─", 60)

		printLine(cmd, "ID:        %d", e.ID)
		printLine(cmd, "Time:      %s", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		printLine(cmd, "Provider:  %s", e.Provider)
		printLine(cmd, "Model:     %s", e.Model)
		printLine(cmd, "Purpose:   %s", e.Purpose)
		printLine(cmd, "Tokens:    %d in / %d out", e.InputTokens, e.OutputTokens)
		printLine(cmd, "Latency:   %dms", e.LatencyMs)
		printLine(cmd, "Success:   %v", e.Success)
		if e.ErrorMessage != "" {
			printLine(cmd, "Error:     %s", report.Fail(e.ErrorMessage))
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			printLine(cmd, "\n%s\n%s\n%s", sep, report.SectionStyle.Render(part.title), sep)
			if part.body == "" {
				printLine(cmd, "%s", report.Hint("(not captured)"))
				continue
			}
			printLine(cmd, "%s", part.body)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		stats, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		if len(stats) == 0 {
			printLine(cmd, "No LLM usage recorded yet.")
			return nil
		}

		printLine(cmd, "%s", report.SectionStyle.Render("Usage by Purpose"))
		t := report.NewTable(report.ASCII)
		t.Header("Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms")
		t.AlignRight(2, 3, 4, 5, 6, 7)

		var totalCalls, totalFailed, totalIn, totalOut int
		for _, st := range stats {
			t.Row(st.Key, st.Calls, st.Failures, st.InputTokens, st.OutputTokens,
				st.InputTokens+st.OutputTokens, fmt.Sprintf("%.0f", st.AvgLatencyMs))
			totalCalls += st.Calls
			totalFailed += st.Failures
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
		}
		t.Footer("TOTAL", totalCalls, totalFailed, totalIn, totalOut, totalIn+totalOut, "")
		printLine(cmd, "%s\n", t.String())

		modelUsage, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(modelUsage) == 0 {
			return nil
		}

		printLine(cmd, "%s", report.SectionStyle.Render("Estimated Cost (USD)"))
		ct := report.NewTable(report.ASCII)
		ct.Header("Model", "Calls", "Input", "Output", "Cost")
		ct.AlignRight(2, 3, 4, 5)

		var totalCost float64
		var unknownModels []string
		for _, mu := range modelUsage {
			cost := llm.LookupCost(mu.Key)
			if cost == nil {
				unknownModels = append(unknownModels, mu.Key)
				ct.Row(truncate(mu.Key, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
				continue
			}
			c := cost.Cost(mu.InputTokens, mu.OutputTokens)
			totalCost += c
			ct.Row(truncate(mu.Key, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(c))
		}

		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		ct.Footer(label, "", "", "", formatCost(totalCost))
		printLine(cmd, "%s", ct.String())

		if len(unknownModels) > 0 {
			printLine(cmd, "\nPricing unavailable for: %s", strings.Join(unknownModels, ", "))
		}
		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. narrative-student, narrative-class)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}

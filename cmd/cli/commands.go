package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"ruh-integration-pages/internal/classifier"
	"ruh-integration-pages/internal/ioformats"
	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/parser"
	"ruh-integration-pages/internal/pipeline"
	"ruh-integration-pages/internal/preview"
)

var (
	batchDelay  float64
	batchReport string
	parseName   string
	parseLogo   string
	parseMD     bool
	classifyFor string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show published and pending connector counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.Pipeline.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), statusTable(st))
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Generate and publish the next pending connector",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Pipeline.Next(cmd.Context())
		if errors.Is(err, pipeline.ErrNoPending) {
			fmt.Fprintln(cmd.OutOrStdout(), "All connectors have been published!")
		} else if err != nil {
			return err
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), outcomeTable([]models.Outcome{out}))
		}

		st, err := a.Pipeline.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), statusTable(st))
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <count>",
	Short: "Generate up to <count> pending connectors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := strconv.Atoi(args[0])
		if err != nil || count < 1 {
			return fmt.Errorf("count must be a positive integer, got %q", args[0])
		}
		delay := cfg.Batch.Delay
		if cmd.Flags().Changed("delay") {
			if batchDelay < 0 {
				return errors.New("--delay must not be negative")
			}
			delay = time.Duration(batchDelay * float64(time.Second))
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		rep, runErr := a.Pipeline.Batch(cmd.Context(), count, delay)
		w := cmd.OutOrStdout()
		if len(rep.Outcomes) > 0 {
			fmt.Fprintln(w, outcomeTable(rep.Outcomes))
		}
		if rep.Exhausted {
			fmt.Fprintln(w, "All connectors have been published!")
		}
		fmt.Fprintf(w, "Batch complete: %d successful, %d failed\n", rep.Succeeded, rep.Failed)

		if batchReport != "" {
			if err := writeReport(batchReport, rep.Outcomes); err != nil {
				return err
			}
		}
		if runErr != nil {
			return runErr
		}

		st, err := a.Pipeline.Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(w, statusTable(st))
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Print the CMS payload for a generated page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		cls := classifier.FromFiles(cfg.Taxonomy.Categories, cfg.Taxonomy.Tags,
			classifier.WithLimits(cfg.Taxonomy.MaxCategories, cfg.Taxonomy.MaxTags),
			classifier.WithLogger(log))
		p := pipeline.New(nil, nil, nil, pipeline.WithClassifier(cls), pipeline.WithLogger(log))
		payload := p.BuildPayload(parseName, parseLogo, doc)

		if parseMD {
			out, err := preview.NewConverter().Page(payload)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		return printJSON(cmd.OutOrStdout(), payload)
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Show category and tag scores for a generated page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		cls := classifier.FromFiles(cfg.Taxonomy.Categories, cfg.Taxonomy.Tags,
			classifier.WithLimits(cfg.Taxonomy.MaxCategories, cfg.Taxonomy.MaxTags))
		cats, tags, err := cls.Explain(classifyFor, doc)
		if err != nil {
			return err
		}
		res := cls.Classify(classifyFor, doc)

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, scoreTable("Categories", cats))
		fmt.Fprintln(w, scoreTable("Tags", tags))
		fmt.Fprintf(w, "Selected categories: %v\nSelected tags: %v\n", res.Categories, res.Tags)
		return nil
	},
}

var republishCmd = &cobra.Command{
	Use:   "republish <name>",
	Short: "Publish an already generated page again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Pipeline.Republish(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("publish failed: %s", res.Error)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %s (HTTP %d)\n", args[0], res.StatusCode)
		return nil
	},
}

func init() {
	batchCmd.Flags().Float64Var(&batchDelay, "delay", 2, "seconds to wait between pages")
	batchCmd.Flags().StringVar(&batchReport, "report", "", "write per-connector outcomes as NDJSON to this file")

	parseCmd.Flags().StringVar(&parseName, "name", "", "connector name (required)")
	parseCmd.Flags().StringVar(&parseLogo, "logo", "", "connector logo URL")
	parseCmd.Flags().BoolVar(&parseMD, "markdown", false, "print a Markdown preview instead of JSON")
	_ = parseCmd.MarkFlagRequired("name")

	classifyCmd.Flags().StringVar(&classifyFor, "name", "", "connector name (required)")
	_ = classifyCmd.MarkFlagRequired("name")
}

func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return parser.Decode(data, "")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeReport(path string, outcomes []models.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	return ioformats.WriteNDJSON(f, outcomes)
}

var borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

func statusTable(st models.Status) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Total", "Published", "Unpublished", "Next to Process").
		Row(strconv.Itoa(st.Total), strconv.Itoa(st.Published), strconv.Itoa(st.Unpublished), st.Next).
		String()
}

func outcomeTable(outcomes []models.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		result := "✓"
		if !o.Success {
			result = "✗"
		}
		publish := "-"
		if o.Publish != nil {
			publish = "ok"
			if !o.Publish.Success {
				publish = o.Publish.Error
			}
		}
		detail := o.File
		if o.Error != "" {
			detail = o.Error
		}
		rows = append(rows, []string{o.Connector, result, publish, detail, o.Duration.Round(time.Millisecond).String()})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Connector", "Saved", "Publish", "File / Error", "Took").
		Rows(rows...).
		String()
}

func scoreTable(title string, scored []models.ScoredEntry) string {
	rows := make([][]string, 0, len(scored))
	for _, s := range scored {
		rows = append(rows, []string{strconv.Itoa(s.ID), s.Name, strconv.Itoa(s.Score), fmt.Sprint(s.MatchedKeywords)})
	}
	return title + "\n" + table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("ID", "Name", "Score", "Matched").
		Rows(rows...).
		String()
}

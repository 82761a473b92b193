package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	service "github.com/okian/launchdash/internal/app"
	"github.com/okian/launchdash/internal/domain/types"
	"github.com/okian/launchdash/pkg/logger"
)

// Output formats accepted by summary --format.
const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatCSV      = "csv"
)

var summaryFlags struct {
	site   string
	min    float64
	max    float64
	format string
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard aggregates as tables",
	Long: `Load the launch records and print what the dashboard would show for
the given site and payload range: the dataset summary, the success pie
aggregate and the scatter points grouped by booster category.

--min and --max default to the dataset payload bounds.`,
	Example: `  launchdash summary
  launchdash summary --site "KSC LC-39A" --min 2000 --max 8000
  launchdash summary --data launches.csv --format markdown`,
	RunE: runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&summaryFlags.site, "site", types.AllSites, "launch site, or "+types.AllSites+" for every site")
	f.Float64Var(&summaryFlags.min, "min", 0, "payload range lower bound in kg")
	f.Float64Var(&summaryFlags.max, "max", 0, "payload range upper bound in kg")
	f.StringVar(&summaryFlags.format, "format", formatTable, "output format: table, markdown or csv")
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	format := strings.ToLower(summaryFlags.format)
	switch format {
	case formatTable, formatMarkdown, formatCSV:
	default:
		return fmt.Errorf("unknown format %q", summaryFlags.format)
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	// Only problems are worth reporting next to the tables.
	_ = logger.SetLevelString("warn")

	svc := service.New(
		service.WithLogger(logger.Get()),
		service.WithDataPath(cfg.DataPath),
		service.WithCacheSize(-1),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	sum, err := svc.Summary(ctx)
	if err != nil {
		return err
	}

	rng := types.Range{Min: sum.PayloadMin, Max: sum.PayloadMax}
	if cmd.Flags().Changed("min") {
		rng.Min = summaryFlags.min
	}
	if cmd.Flags().Changed("max") {
		rng.Max = summaryFlags.max
	}

	pie, err := svc.SuccessPie(ctx, summaryFlags.site)
	if err != nil {
		return err
	}
	sc, err := svc.PayloadScatter(ctx, summaryFlags.site, rng)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	render(out, format, datasetTable(cfg.DataPath, sum))
	render(out, format, pieTable(pie))
	render(out, format, scatterTable(sc, sum.BoosterCategories))
	return nil
}

// render writes t in format followed by a blank line.
func render(w io.Writer, format string, t table.Writer) {
	var s string
	switch format {
	case formatMarkdown:
		s = t.RenderMarkdown()
	case formatCSV:
		s = t.RenderCSV()
	default:
		t.SetStyle(table.StyleLight)
		s = t.Render()
	}
	fmt.Fprintln(w, s)
	fmt.Fprintln(w)
}

func datasetTable(path string, sum types.DatasetSummary) table.Writer {
	t := table.NewWriter()
	t.SetTitle("Dataset")
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Source", path})
	t.AppendRow(table.Row{"Records", sum.Records})
	t.AppendRow(table.Row{"Successes", sum.Successes})
	t.AppendRow(table.Row{"Sites", strings.Join(sum.Sites, ", ")})
	t.AppendRow(table.Row{"Booster categories", strings.Join(sum.BoosterCategories, ", ")})
	t.AppendRow(table.Row{"Payload range (kg)", fmt.Sprintf("%g - %g", sum.PayloadMin, sum.PayloadMax)})
	return t
}

func pieTable(pie types.PieChart) table.Writer {
	t := table.NewWriter()
	t.SetTitle(pie.Title)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})

	total := 0
	if pie.Site == types.AllSites {
		t.AppendHeader(table.Row{"Launch Site", "Successes"})
		for _, row := range pie.BySite {
			t.AppendRow(table.Row{row.Site, row.Successes})
			total += row.Successes
		}
	} else {
		t.AppendHeader(table.Row{"Outcome", "Count"})
		for _, row := range pie.ByOutcome {
			t.AppendRow(table.Row{row.Label, row.Count})
			total += row.Count
		}
	}
	t.AppendFooter(table.Row{"Total", total})
	return t
}

// scatterTable groups the plotted points by booster category, listing
// categories in dataset order.
func scatterTable(sc types.ScatterChart, categories []string) table.Writer {
	type tally struct{ success, failure int }
	counts := make(map[string]*tally, len(categories))
	for _, p := range sc.Points {
		c, ok := counts[p.BoosterCategory]
		if !ok {
			c = &tally{}
			counts[p.BoosterCategory] = c
		}
		if p.Outcome == 1 {
			c.success++
		} else {
			c.failure++
		}
	}

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s [%g, %g] kg", sc.Title, sc.Range.Min, sc.Range.Max))
	t.AppendHeader(table.Row{"Booster Category", "Success", "Failure", "Points"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	var success, failure int
	for _, cat := range categories {
		c, ok := counts[cat]
		if !ok {
			continue
		}
		t.AppendRow(table.Row{cat, c.success, c.failure, c.success + c.failure})
		success += c.success
		failure += c.failure
	}
	t.AppendFooter(table.Row{"Total", success, failure, len(sc.Points)})
	return t
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/activitydash/internal/client/api"
	"github.com/dmitrijs2005/activitydash/internal/filex"
	"github.com/dmitrijs2005/activitydash/internal/netx"
)

// downloadExport is a seam for tests.
var downloadExport = netx.DownloadPresignedURL

type chartRow struct {
	day     string
	login   int64
	logout  int64
	unknown int64
}

// pivot folds (day, type, count) rows into one row per day, keeping the
// server's day order.
func pivot(rows []api.DailyCount) []chartRow {
	out := make([]chartRow, 0, len(rows))
	idx := make(map[string]int, len(rows))
	for _, r := range rows {
		i, ok := idx[r.Day]
		if !ok {
			i = len(out)
			idx[r.Day] = i
			out = append(out, chartRow{day: r.Day})
		}
		switch r.ActivityType {
		case "login":
			out[i].login += r.Count
		case "logout":
			out[i].logout += r.Count
		default:
			out[i].unknown += r.Count
		}
	}
	return out
}

func renderChart(rows []api.DailyCount) string {
	days := pivot(rows)
	if len(days) == 0 {
		return "No activity yet"
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tLOGIN\tLOGOUT\t")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d %s\t%d %s\t\n", d.day, d.login, bar(d.login), d.logout, bar(d.logout))
	}
	_ = tw.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

func bar(n int64) string {
	const maxWidth = 40
	if n > maxWidth {
		return strings.Repeat("#", maxWidth) + "+"
	}
	return strings.Repeat("#", int(n))
}

func (a *App) Chart(ctx context.Context) error {
	rows, err := a.client.ActivityChart(ctx, a.tokens.Access)
	if err != nil {
		return err
	}
	printlnFn(renderChart(rows))
	return nil
}

// Export asks the server to store the chart in object storage and then
// downloads the file into the configured reports directory.
func (a *App) Export(ctx context.Context) error {
	exp, err := a.client.ExportActivityChart(ctx, a.tokens.Access)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.ReportsDir)
	if err != nil {
		return err
	}

	target := filepath.Join(dir, path.Base(exp.Key))
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	n, err := downloadExport(ctx, exp.URL, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(target)
		return err
	}

	printlnFn(fmt.Sprintf("Saved %d bytes to %s", n, target))
	printlnFn("Link (expires soon):", exp.URL)
	return nil
}

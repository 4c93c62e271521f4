package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"scenebatch/internal/batch"
)

// printSummary renders the end-of-batch artifact table. Stage mode trims the
// rows to the stage that actually ran.
func printSummary(w io.Writer, stage string, summary batch.Summary) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Artifact", "Count", "Failed scenes"})
	tw.AppendRow(table.Row{"Scenes processed", summary.ScenesTotal, ""})
	if stage == batch.StageAll || stage == batch.StageVideos {
		tw.AppendRow(table.Row{"Videos created", summary.VideoCount(), joinScenes(summary.VideoFailures)})
	}
	if stage == batch.StageAll || stage == batch.StageReconstruction {
		tw.AppendRow(table.Row{"Point clouds created", len(summary.PointCloudPaths), joinScenes(summary.ReconstructionFailures)})
	}
	if stage == batch.StageAll || stage == batch.StageDescriptor {
		tw.AppendRow(table.Row{"Descriptors created", summary.DescriptorCount(), joinScenes(summary.DescriptorFailures)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	fmt.Fprintln(w, tw.Render())
}

func joinScenes(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	const limit = 5
	if len(ids) > limit {
		return strings.Join(ids[:limit], ", ") + fmt.Sprintf(" (+%d more)", len(ids)-limit)
	}
	return strings.Join(ids, ", ")
}

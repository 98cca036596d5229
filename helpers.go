package main

import (
	"fmt"
	"io"
	"os"

	contracts "github.com/estafette/estafette-ci-contracts"
	"github.com/olekukonko/tablewriter"
)

// RenderStats prints a summary table of the build steps to stdout
func RenderStats(buildLogSteps []*contracts.BuildLogStep) {
	renderStats(os.Stdout, buildLogSteps)
}

func renderStats(w io.Writer, buildLogSteps []*contracts.BuildLogStep) {

	if len(buildLogSteps) == 0 {
		return
	}

	data := make([][]string, 0)

	durationTotal := 0.0
	statusTotal := contracts.GetAggregatedStatus(buildLogSteps)

	for _, s := range buildLogSteps {

		exitCode := ""
		if s.Step == "bindeb-pkg" && s.Status != contracts.LogStatusSkipped {
			exitCode = fmt.Sprintf("%v", s.ExitCode)
		}

		data = append(data, []string{
			s.Step,
			fmt.Sprintf("%.0f", s.Duration.Seconds()),
			exitCode,
			string(s.Status),
		})

		durationTotal += s.Duration.Seconds()
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Step", "Duration (s)", "Exit code", "Status"})
	table.SetFooter([]string{"Total", fmt.Sprintf("%.0f", durationTotal), "", string(statusTotal)})
	table.SetBorder(false)
	table.AppendBulk(data)
	table.Render()
}

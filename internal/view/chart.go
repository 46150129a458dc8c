package view

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/microsharks/dealroom/internal/core/domain"
)

const fundingChartHeight = "420px"

// FundingChart writes a standalone bar chart page comparing the amount each
// proposal asks for with the funding it has received.
func FundingChart(w io.Writer, proposals []domain.Proposal, assetsHost string) error {
	titles := make([]string, len(proposals))
	needed := make([]opts.BarData, len(proposals))
	received := make([]opts.BarData, len(proposals))
	for i, p := range proposals {
		titles[i] = orDefault(p.Title, unknownProposal)
		needed[i] = opts.BarData{Name: titles[i], Value: domain.OrZero(p.AmountNeeded).InexactFloat64()}
		received[i] = opts.BarData{Name: titles[i], Value: domain.OrZero(p.FundingReceived).InexactFloat64()}
	}

	initOpts := opts.Initialization{
		PageTitle: "Funding Progress",
		Theme:     types.ThemeWesteros,
		Width:     "100%",
		Height:    fundingChartHeight,
	}
	if assetsHost != "" {
		initOpts.AssetsHost = assetsHost
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Funding Progress", Subtitle: "Asked vs received (₹)"}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(titles).
		AddSeries("Needed", needed).
		AddSeries("Received", received)
	return bar.Render(w)
}

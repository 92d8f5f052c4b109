package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/navidys/tvxwidgets"
	"github.com/racerxdl/segdsp/tools"
	"github.com/rivo/tview"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/plc4trucks/keyholetx/config"
	"github.com/plc4trucks/keyholetx/transmit"
)

type StatsTableData struct {
	tview.TableContentReadOnly
	tx *transmit.FL2K
}

func (s *StatsTableData) GetRowCount() int {
	return 4
}

func (s *StatsTableData) GetColumnCount() int {
	return 2
}

func (s *StatsTableData) GetCell(row, column int) *tview.TableCell {
	switch row {
	case 0:
		if column == 0 {
			return tview.NewTableCell("State:")
		}
		color := tcell.ColorGreen
		if s.tx.State != "transmitting" {
			color = tcell.ColorYellow
		}
		return tview.NewTableCell(s.tx.State).SetTextColor(color)
	case 1:
		if column == 0 {
			return tview.NewTableCell("Loops completed:")
		}
		return tview.NewTableCell(fmt.Sprintf("%d", s.tx.Loops))
	case 2:
		if column == 0 {
			return tview.NewTableCell("Periods written:")
		}
		return tview.NewTableCell(fmt.Sprintf("%d", s.tx.Periods))
	case 3:
		if column == 0 {
			return tview.NewTableCell("Bytes written:")
		}
		return tview.NewTableCell(fmt.Sprintf("%d", s.tx.BytesWritten))
	}
	return tview.NewTableCell("ERROR")
}

var LogOut *tview.TextView

// spectrumBins computes a plottable power spectrum of one signal period.
func spectrumBins(samples []float32) []float64 {
	input := make([]complex128, len(samples))
	for i, sample := range samples {
		input[i] = complex(float64(sample), 0)
	}

	fft := fourier.NewCmplxFFT(len(input))
	coeff := fft.Coefficients(nil, input)

	// Cut this down to a manageable size for the plot widget
	step := max(1, len(coeff)/256)
	var output []float64
	for i := 0; i < len(coeff); i += step {
		v := tools.ComplexAbsSquared(complex64(coeff[fft.ShiftIdx(i)]))
		db := 10.0 * math.Log10(float64(v))
		if db > 0 {
			output = append(output, db)
		}
	}
	return output
}

// StartUI runs the transmit monitor: live streamer stats, loop progress, a
// spectrum of the generated signal, and log output.
func StartUI(tx *transmit.FL2K, signal [][]float32, tuiConf config.TuiConf) {
	app := tview.NewApplication()

	LogOut = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	statsData := &StatsTableData{tx: tx}
	statsTable := tview.NewTable().SetContent(statsData)

	spectrumPlot := tvxwidgets.NewPlot()
	spectrumPlot.SetLineColor([]tcell.Color{tcell.ColorLightSkyBlue})
	spectrumPlot.SetMarker(tvxwidgets.PlotMarkerBraille)
	spectrumPlot.SetBorder(true)
	spectrumPlot.SetTitle("Period Spectrum")

	loopGauge := tvxwidgets.NewUtilModeGauge()
	loopGauge.SetLabel("Loop progress:  ")
	loopGauge.SetLabelColor(tcell.ColorLightSkyBlue)
	loopGauge.SetWarnPercentage(99)
	loopGauge.SetCritPercentage(100)
	loopGauge.SetEmptyColor(tcell.ColorBlack)
	loopGauge.SetBorder(false)

	gaugeBox := tview.NewFlex()
	gaugeBox.SetDirection(tview.FlexRow)
	gaugeBox.AddItem(loopGauge, 0, 1, false)
	gaugeBox.SetTitle("Playback")
	gaugeBox.SetBorder(true)

	LogOut.SetChangedFunc(func() {
		LogOut.ScrollToEnd()
		app.Draw()
	})
	LogOut.SetBorder(true).SetTitle("Log Output")
	log.SetOutput(LogOut)

	statsTable.SetSelectable(false, false).SetBorder(true).SetTitle("Transmit Stats")

	page := tview.NewFlex().SetDirection(tview.FlexColumn)

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow)
	leftCol.AddItem(statsTable, 0, 2, false)
	leftCol.AddItem(gaugeBox, 0, 1, false)

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow)
	if tuiConf.DoFFT {
		rightCol.AddItem(spectrumPlot, 0, 2, false)
	}
	if tuiConf.EnableLogOutput {
		rightCol.AddItem(LogOut, 0, 2, false)
	}

	page.AddItem(leftCol, 0, 2, false)
	page.AddItem(rightCol, 0, 3, false)

	if tuiConf.DoFFT && len(signal) > 0 {
		go func() {
			bins := spectrumBins(signal[0])
			spectrumPlot.SetData([][]float64{bins})
			app.Draw()
		}()
	}

	refresh := time.Duration(tuiConf.RefreshMs) * time.Millisecond
	if refresh <= 0 {
		refresh = 500 * time.Millisecond
	}
	go func() {
		for {
			if total := len(signal); total > 0 {
				loopGauge.SetValue(float64(tx.Periods%total) / float64(total) * 100)
			}
			app.Draw()
			time.Sleep(refresh)
		}
	}()

	if err := app.SetRoot(page, true).EnableMouse(true).Run(); err != nil {
		log.Fatalf("Could not start UI: %v", err)
	}
}

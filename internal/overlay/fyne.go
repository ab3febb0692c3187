package overlay

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
)

// pillSize is the fixed footprint of one overlay window.
var pillSize = fyne.NewSize(180, 36)

var stateColors = map[PillState]color.NRGBA{
	PillIdle:    {R: 150, G: 150, B: 150, A: 255},
	PillWorking: {R: 220, G: 220, B: 0, A: 255},
	PillLive:    {R: 255, G: 60, B: 60, A: 255},
	PillOK:      {R: 90, G: 200, B: 90, A: 255},
	PillError:   {R: 255, G: 80, B: 80, A: 255},
}

// fyneWindow renders one pill: a floating window with a colored status
// text and hide-not-close behavior.
// Splash windows (borderless, above normal windows) are used when the
// driver supports them.
type fyneWindow struct {
	win   fyne.Window
	label *canvas.Text
	dot   *canvas.Circle
}

// NewFyneFactory returns a Window factory bound to a fyne app. Pass the
// result to NewManager.
func NewFyneFactory(app fyne.App) func(Monitor) Window {
	return func(mon Monitor) Window {
		var win fyne.Window
		if drv, ok := app.Driver().(desktop.Driver); ok {
			win = drv.CreateSplashWindow()
		} else {
			win = app.NewWindow("dicktaint")
		}
		win.SetCloseIntercept(func() {
			win.Hide()
		})
		win.Resize(pillSize)
		win.SetPadded(false)

		label := canvas.NewText("Ready", stateColors[PillIdle])
		label.TextSize = 12
		dot := canvas.NewCircle(stateColors[PillIdle])
		dot.Resize(fyne.NewSize(10, 10))

		win.SetContent(container.NewHBox(
			container.NewWithoutLayout(dot),
			label,
		))

		return &fyneWindow{win: win, label: label, dot: dot}
	}
}

func (w *fyneWindow) SetStatus(s Status) {
	c, ok := stateColors[s.State]
	if !ok {
		c = stateColors[PillIdle]
	}
	w.label.Text = s.Message
	w.label.Color = c
	w.dot.FillColor = c
	w.label.Refresh()
	w.dot.Refresh()

	if s.Visible {
		w.win.Show()
	} else {
		w.win.Hide()
	}
}

func (w *fyneWindow) Close() {
	w.win.Close()
}

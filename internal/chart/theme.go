package chart

// Dark theme values.
const (
	DarkTemplate  = "plotly_dark"
	TransparentBg = "rgba(0,0,0,0)"
	DarkFontColor = "#FFFFFF"
	DarkGridColor = "#4A4A4A"
)

// ApplyDarkTheme returns a copy of f styled for a dark page: dark template,
// transparent backgrounds, white text and grey grid lines. Applying it more
// than once gives the same result. A nil figure is returned unchanged.
func ApplyDarkTheme(f *Figure) *Figure {
	if f == nil {
		return nil
	}
	out := *f
	out.Data = append([]Trace(nil), f.Data...)

	out.Layout.Template = DarkTemplate
	out.Layout.PaperBgColor = TransparentBg
	out.Layout.PlotBgColor = TransparentBg

	font := Font{}
	if f.Layout.Font != nil {
		font = *f.Layout.Font
	}
	font.Color = DarkFontColor
	out.Layout.Font = &font

	out.Layout.XAxis = withGrid(f.Layout.XAxis)
	out.Layout.YAxis = withGrid(f.Layout.YAxis)
	return &out
}

func withGrid(a *Axis) *Axis {
	axis := Axis{}
	if a != nil {
		axis = *a
	}
	axis.GridColor = DarkGridColor
	return &axis
}

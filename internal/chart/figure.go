// Package chart builds Plotly-compatible figure documents for the console
// dashboards.
package chart

// Figure is a Plotly figure: traces plus layout. It marshals to the JSON
// accepted by Plotly.newPlot.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace.
type Trace struct {
	Type   string    `json:"type"`
	Name   string    `json:"name,omitempty"`
	Mode   string    `json:"mode,omitempty"`
	X      []any     `json:"x,omitempty"`
	Y      []float64 `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// Layout is the subset of Plotly layout attributes the console sets.
type Layout struct {
	Title        *Title `json:"title,omitempty"`
	Template     string `json:"template,omitempty"`
	PaperBgColor string `json:"paper_bgcolor,omitempty"`
	PlotBgColor  string `json:"plot_bgcolor,omitempty"`
	Font         *Font  `json:"font,omitempty"`
	XAxis        *Axis  `json:"xaxis,omitempty"`
	YAxis        *Axis  `json:"yaxis,omitempty"`
	BarMode      string `json:"barmode,omitempty"`
}

// Title is a layout title.
type Title struct {
	Text string `json:"text"`
}

// Font sets text styling.
type Font struct {
	Color string `json:"color,omitempty"`
}

// Axis sets axis styling.
type Axis struct {
	Title     *Title `json:"title,omitempty"`
	GridColor string `json:"gridcolor,omitempty"`
}

// Series is one named line or bar series.
type Series struct {
	Name string
	X    []any
	Y    []float64
}

func newFigure(title string) *Figure {
	f := &Figure{Data: []Trace{}}
	if title != "" {
		f.Layout.Title = &Title{Text: title}
	}
	return f
}

// Pie builds a pie chart of values by label.
func Pie(title string, labels []string, values []float64) *Figure {
	f := newFigure(title)
	f.Data = append(f.Data, Trace{Type: "pie", Labels: labels, Values: values})
	return f
}

// Bar builds a bar chart with one trace per series. Multiple series stack.
func Bar(title string, series ...Series) *Figure {
	f := newFigure(title)
	for _, s := range series {
		f.Data = append(f.Data, Trace{Type: "bar", Name: s.Name, X: s.X, Y: s.Y})
	}
	if len(series) > 1 {
		f.Layout.BarMode = "stack"
	}
	return f
}

// Line builds a line chart with one trace per series.
func Line(title string, series ...Series) *Figure {
	f := newFigure(title)
	for _, s := range series {
		f.Data = append(f.Data, Trace{Type: "scatter", Mode: "lines", Name: s.Name, X: s.X, Y: s.Y})
	}
	return f
}

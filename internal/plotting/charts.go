package plotting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// SaveFeatureScatter renders an HTML scatter of feature column f1 against
// f2, one series per class, so a feature pair's separability can be eyed
// before committing to a classifier run.
func SaveFeatureScatter(path string, features [][]float64, labels []string, f1, f2 int) error {
	byClass, classes, err := groupRows(features, labels)
	if err != nil {
		return err
	}
	for _, rows := range byClass {
		if f1 < 0 || f2 < 0 || f1 >= len(rows[0]) || f2 >= len(rows[0]) {
			return fmt.Errorf("plotting: feature indices %d, %d out of range for %d features", f1, f2, len(rows[0]))
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Feature scatter", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Feature scatter",
			Subtitle: fmt.Sprintf("feature %d vs feature %d, %d datapoints", f1, f2, len(features)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("feature %d", f1), Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("feature %d", f2), Scale: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	for _, class := range classes {
		data := make([]opts.ScatterData, 0, len(byClass[class]))
		for _, row := range byClass[class] {
			data = append(data, opts.ScatterData{Value: []interface{}{row[f1], row[f2]}})
		}
		scatter.AddSeries(class, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}

	return renderToFile(path, scatter.Render)
}

// SaveFeatureHistogram renders an HTML bar chart of one feature column
// binned per class.
func SaveFeatureHistogram(path string, features [][]float64, labels []string, feature, bins int) error {
	if bins < 1 {
		return fmt.Errorf("plotting: bin count %d must be >= 1", bins)
	}
	byClass, classes, err := groupRows(features, labels)
	if err != nil {
		return err
	}

	for _, row := range features {
		if feature < 0 || feature >= len(row) {
			return fmt.Errorf("plotting: feature index %d out of range for %d features", feature, len(row))
		}
	}

	// Common bin edges across classes so the bars line up.
	min, max := features[0][feature], features[0][feature]
	for _, row := range features {
		if row[feature] < min {
			min = row[feature]
		}
		if row[feature] > max {
			max = row[feature]
		}
	}
	width := (max - min) / float64(bins)
	if width == 0 {
		width = 1
	}

	binLabels := make([]string, bins)
	for i := range binLabels {
		binLabels[i] = fmt.Sprintf("%.3g", min+(float64(i)+0.5)*width)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Feature histogram", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Feature %d histogram", feature)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(binLabels)

	for _, class := range classes {
		counts := BinCounts(columnOf(byClass[class], feature), min, width, bins)
		data := make([]opts.BarData, bins)
		for i, c := range counts {
			data[i] = opts.BarData{Value: c}
		}
		bar.AddSeries(class, data)
	}

	return renderToFile(path, bar.Render)
}

// BinCounts counts values into bins of the given width starting at min.
// Values beyond the last edge (max itself, rounding) land in the last bin.
func BinCounts(values []float64, min, width float64, bins int) []int {
	counts := make([]int, bins)
	for _, v := range values {
		i := int((v - min) / width)
		if i < 0 {
			i = 0
		}
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	return counts
}

func columnOf(rows [][]float64, col int) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[col]
	}
	return out
}

func groupRows(features [][]float64, labels []string) (map[string][][]float64, []string, error) {
	if len(features) == 0 {
		return nil, nil, fmt.Errorf("plotting: no features")
	}
	if len(features) != len(labels) {
		return nil, nil, fmt.Errorf("plotting: %d feature rows, %d labels", len(features), len(labels))
	}
	byClass := make(map[string][][]float64)
	for i, row := range features {
		byClass[labels[i]] = append(byClass[labels[i]], row)
	}
	classes := make([]string, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return byClass, classes, nil
}

func renderToFile(path string, render func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	if err := render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// Package stats implements C9: StatsStore, the time-series export over
// the aggregate samples the driver records after each (suite, section) run.
package stats

import (
	"encoding/json"
	"sort"

	"github.com/ralt/appstream-gen/internal/store"
)

// Sample is one aggregate observation for a (suite, section) run, recorded
// at the time its ReportAggregator pass completed.
type Sample struct {
	Suite         string `json:"suite"`
	Section       string `json:"section"`
	TotalInfos    int    `json:"total_infos"`
	TotalWarnings int    `json:"total_warnings"`
	TotalErrors   int    `json:"total_errors"`

	// TotalMetadataHook computes the sample's "total metadata" value. It
	// is not serialized; callers that want the behavior of the
	// placeholder this core's ancestor shipped ("totalMetadata = 42")
	// must inject one explicitly. The shipped default never fabricates a
	// count.
	TotalMetadataHook func() int `json:"-"`
}

func defaultTotalMetadataHook() int { return 0 }

// NewSample creates a Sample with the default, zero-valued metadata hook.
func NewSample(suite, section string, infos, warnings, errors int) Sample {
	return Sample{
		Suite:             suite,
		Section:           section,
		TotalInfos:        infos,
		TotalWarnings:     warnings,
		TotalErrors:       errors,
		TotalMetadataHook: defaultTotalMetadataHook,
	}
}

type encodedSample struct {
	Suite         string `json:"suite"`
	Section       string `json:"section"`
	TotalInfos    int    `json:"total_infos"`
	TotalWarnings int    `json:"total_warnings"`
	TotalErrors   int    `json:"total_errors"`
	TotalMetadata int    `json:"total_metadata"`
}

// Store records and exports Samples through a persistent Store.
type Store struct {
	store store.Store
}

// New creates a Store writing through s.
func New(s store.Store) *Store {
	return &Store{store: s}
}

// AddStatistics serializes sample and appends it under the current time.
func (st *Store) AddStatistics(sample Sample) error {
	hook := sample.TotalMetadataHook
	if hook == nil {
		hook = defaultTotalMetadataHook
	}

	blob, err := json.Marshal(encodedSample{
		Suite:         sample.Suite,
		Section:       sample.Section,
		TotalInfos:    sample.TotalInfos,
		TotalWarnings: sample.TotalWarnings,
		TotalErrors:   sample.TotalErrors,
		TotalMetadata: hook(),
	})
	if err != nil {
		return err
	}
	return st.store.AddStatistics(blob)
}

// Point is one {x, y} observation in an exported series.
type Point struct {
	X int64 `json:"x"`
	Y int   `json:"y"`
}

// Series is one named time series, points sorted ascending by X.
type Series map[string][]Point

// Export returns, for each recorded sample, its suite and section grouped
// into a nested map of series: suite -> section -> metric name -> points,
// each series sorted ascending by timestamp.
func (st *Store) Export() (map[string]map[string]Series, error) {
	raw, err := st.store.GetStatistics()
	if err != nil {
		return nil, err
	}

	timestamps := make([]int64, 0, len(raw))
	for ts := range raw {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	out := make(map[string]map[string]Series)
	for _, ts := range timestamps {
		var sample encodedSample
		if err := json.Unmarshal(raw[ts], &sample); err != nil {
			continue
		}

		bySection, ok := out[sample.Suite]
		if !ok {
			bySection = make(map[string]Series)
			out[sample.Suite] = bySection
		}
		series, ok := bySection[sample.Section]
		if !ok {
			series = Series{}
			bySection[sample.Section] = series
		}

		series["infos"] = append(series["infos"], Point{X: ts, Y: sample.TotalInfos})
		series["warnings"] = append(series["warnings"], Point{X: ts, Y: sample.TotalWarnings})
		series["errors"] = append(series["errors"], Point{X: ts, Y: sample.TotalErrors})
		series["metadata"] = append(series["metadata"], Point{X: ts, Y: sample.TotalMetadata})
	}
	return out, nil
}

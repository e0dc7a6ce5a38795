package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ralt/appstream-gen/internal/store"
)

func TestAddStatisticsDefaultsMetadataHookToZero(t *testing.T) {
	s := New(store.NewMemory(nil))
	require.NoError(t, s.AddStatistics(NewSample("stable", "main", 1, 2, 3)))

	exported, err := s.Export()
	require.NoError(t, err)
	require.Equal(t, 0, exported["stable"]["main"]["metadata"][0].Y)
}

func TestAddStatisticsHonorsInjectedMetadataHook(t *testing.T) {
	s := New(store.NewMemory(nil))
	sample := NewSample("stable", "main", 0, 0, 0)
	sample.TotalMetadataHook = func() int { return 42 }
	require.NoError(t, s.AddStatistics(sample))

	exported, err := s.Export()
	require.NoError(t, err)
	require.Equal(t, 42, exported["stable"]["main"]["metadata"][0].Y)
}

func TestExportSortsSeriesAscendingByTimestamp(t *testing.T) {
	clockValues := []int64{30, 10, 20}
	i := 0
	clock := func() int64 {
		v := clockValues[i]
		i++
		return v
	}

	s := New(store.NewMemory(clock))
	require.NoError(t, s.AddStatistics(NewSample("stable", "main", 1, 0, 0)))
	require.NoError(t, s.AddStatistics(NewSample("stable", "main", 2, 0, 0)))
	require.NoError(t, s.AddStatistics(NewSample("stable", "main", 3, 0, 0)))

	exported, err := s.Export()
	require.NoError(t, err)
	points := exported["stable"]["main"]["infos"]
	require.Len(t, points, 3)
	for i := 1; i < len(points); i++ {
		require.LessOrEqual(t, points[i-1].X, points[i].X)
	}
}

func TestExportGroupsBySuiteAndSection(t *testing.T) {
	s := New(store.NewMemory(nil))
	require.NoError(t, s.AddStatistics(NewSample("stable", "main", 1, 0, 0)))
	require.NoError(t, s.AddStatistics(NewSample("testing", "contrib", 2, 0, 0)))

	exported, err := s.Export()
	require.NoError(t, err)
	require.Contains(t, exported, "stable")
	require.Contains(t, exported, "testing")
	require.Contains(t, exported["stable"], "main")
	require.Contains(t, exported["testing"], "contrib")
}

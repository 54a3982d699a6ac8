package anomaly

import (
	"errors"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alt-project/normscan/internal/group"
	"github.com/alt-project/normscan/internal/normality"
	"github.com/alt-project/normscan/internal/sample"
)

const day = 86400

type dayKind int

const (
	normalDay dayKind = iota
	constantDay
	skewedDay
)

// buildDays lays out one group of n samples per kind, on consecutive days
func buildDays(rng *rand.Rand, n int, kinds ...dayKind) []sample.Sample {
	var samples []sample.Sample
	for d, kind := range kinds {
		for i := 0; i < n; i++ {
			var v float64
			switch kind {
			case normalDay:
				v = 50 + 10*rng.NormFloat64()
			case constantDay:
				v = 100
			case skewedDay:
				v = rng.ExpFloat64()
			}
			samples = append(samples, sample.Sample{
				Timestamp: time.Unix(int64(d*day+i), 0).UTC(),
				Value:     v,
			})
		}
	}
	return samples
}

type recordingObserver struct {
	samples    int
	formed     []string
	classified []string
	skipped    []string
}

func (r *recordingObserver) SampleRead()                { r.samples++ }
func (r *recordingObserver) GroupFormed(g group.Group)  { r.formed = append(r.formed, g.Key) }
func (r *recordingObserver) GroupSkipped(g group.Group, _ error) {
	r.skipped = append(r.skipped, g.Key)
}
func (r *recordingObserver) GroupClassified(g group.Group, _ normality.Result) {
	r.classified = append(r.classified, g.Key)
}

func TestFilter_YieldsExactlyNonNormalGroupsInOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	kinds := []dayKind{normalDay, constantDay, normalDay, skewedDay, normalDay, constantDay, skewedDay, normalDay}
	samples := buildDays(rng, 500, kinds...)

	// Expected output straight from the grouper and classifier.
	classifier := normality.NewClassifier(normality.DefaultThreshold, normality.MinSamples)
	grouper := group.NewGrouper(sample.NewSliceSource(samples), group.CalendarDate)
	var want []string
	total := 0
	for grouper.Next() {
		total++
		res, err := classifier.Classify(grouper.Group().Values())
		require.NoError(t, err)
		if !res.IsNormal {
			want = append(want, grouper.Group().Key)
		}
	}
	require.Equal(t, len(kinds), total)
	require.NotEmpty(t, want)

	f := NewFilter(sample.NewSliceSource(samples), DefaultOptions())
	defer f.Close()

	var got []string
	for f.Next() {
		a := f.Anomaly()
		assert.False(t, a.Result.IsNormal)
		assert.Equal(t, a.Group.Len(), a.Result.N)
		got = append(got, a.Group.Key)
	}
	require.NoError(t, f.Err())
	assert.Equal(t, want, got)

	stats := f.Stats()
	assert.Equal(t, len(samples), stats.SamplesRead)
	assert.Equal(t, total, stats.GroupsFormed)
	assert.Equal(t, total, stats.GroupsClassified)
	assert.Equal(t, len(want), stats.Anomalies)
}

func TestFilter_LazyOverInfiniteSource(t *testing.T) {
	obs := &recordingObserver{}
	opts := DefaultOptions()
	opts.Observer = obs

	src := sample.NewSyntheticSource(sample.DefaultSyntheticOptions())
	f := NewFilter(src, opts)

	const k = 5
	found := 0
	for found < k && f.Next() {
		found++
	}
	require.NoError(t, f.Close())
	require.Equal(t, k, found)

	stats := f.Stats()
	assert.Equal(t, k, stats.GroupsClassified, "no group beyond the k-th anomaly is classified")
	assert.Equal(t, k, stats.GroupsFormed)
	assert.Equal(t, k*day+1, stats.SamplesRead, "only one sample of the in-flight day is read")
	assert.Equal(t, int64(k*day+1), src.Generated())
	assert.Equal(t, stats.SamplesRead, obs.samples)
	assert.Len(t, obs.classified, k)

	assert.False(t, f.Next(), "a closed filter yields nothing")
}

func TestFilter_ParseErrorStopsPipeline(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString(strconv.Itoa(i) + ",100\n")
	}
	b.WriteString("abc,1\n")
	for i := 0; i < 20; i++ {
		b.WriteString(strconv.Itoa(2*day+i) + ",100\n")
	}

	rc := &closeCounter{Reader: strings.NewReader(b.String())}
	f := NewFilter(sample.NewReaderSource(rc, "bad.csv", time.UTC), DefaultOptions())

	var got []string
	for f.Next() {
		got = append(got, f.Anomaly().Group.Key)
	}
	assert.Empty(t, got, "the day cut short by the bad line is never yielded")

	var perr *sample.ParseError
	require.ErrorAs(t, f.Err(), &perr)
	assert.Equal(t, 21, perr.Line)

	require.NoError(t, f.Close())
	assert.Equal(t, 1, rc.closes)
}

func TestFilter_ReleasesSourceOnExhaustionAndAbandon(t *testing.T) {
	var b strings.Builder
	for d := 0; d < 3; d++ {
		for i := 0; i < 10; i++ {
			b.WriteString(strconv.Itoa(d*day+i) + ",7\n")
		}
	}

	rc := &closeCounter{Reader: strings.NewReader(b.String())}
	f := NewFilter(sample.NewReaderSource(rc, "ok.csv", time.UTC), DefaultOptions())
	n := 0
	for f.Next() {
		n++
	}
	require.NoError(t, f.Err())
	require.NoError(t, f.Close())
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, rc.closes)

	rc = &closeCounter{Reader: strings.NewReader(b.String())}
	f = NewFilter(sample.NewReaderSource(rc, "ok.csv", time.UTC), DefaultOptions())
	require.True(t, f.Next())
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
	assert.Equal(t, 1, rc.closes)
}

func TestFilter_InsufficientDataFails(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	samples := buildDays(rng, 20, constantDay)
	samples = append(samples, buildDays(rng, 5, constantDay, constantDay)[5:]...)

	src := sample.NewSliceSource(samples)
	f := NewFilter(src, DefaultOptions())

	require.True(t, f.Next())
	assert.False(t, f.Next())

	err := f.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, normality.ErrInsufficientData))

	var gerr *GroupError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "1970-01-02", gerr.Key)
	assert.Equal(t, 1, src.Closes(), "the source is released when classification fails")

	require.NoError(t, f.Close())
	assert.Equal(t, 1, src.Closes())
}

func TestFilter_InsufficientDataSkip(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	short := buildDays(rng, 5, constantDay, constantDay)[5:]
	samples := buildDays(rng, 20, constantDay)
	samples = append(samples, short...)
	for i := 0; i < 20; i++ {
		samples = append(samples, sample.Sample{Timestamp: time.Unix(int64(2*day+i), 0).UTC(), Value: 1})
	}

	obs := &recordingObserver{}
	opts := DefaultOptions()
	opts.OnInsufficient = InsufficientSkip
	opts.Observer = obs

	f := NewFilter(sample.NewSliceSource(samples), opts)
	var got []string
	for f.Next() {
		got = append(got, f.Anomaly().Group.Key)
	}
	require.NoError(t, f.Err())
	assert.Equal(t, []string{"1970-01-01", "1970-01-03"}, got)
	assert.Equal(t, 1, f.Stats().GroupsSkipped)
	assert.Equal(t, []string{"1970-01-02"}, obs.skipped)
}

func TestFilter_ThresholdChangesClassification(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	samples := buildDays(rng, 300, normalDay)

	it := NewGroups(sample.NewSliceSource(samples), DefaultOptions())
	require.True(t, it.Next())
	p := it.Classified().Result.PValue
	require.NoError(t, it.Close())
	require.Greater(t, p, 0.0)
	require.Less(t, p, 1.0)

	run := func(threshold float64) bool {
		opts := DefaultOptions()
		opts.Threshold = threshold
		f := NewFilter(sample.NewSliceSource(samples), opts)
		defer f.Close()
		found := f.Next()
		require.NoError(t, f.Err())
		return found
	}

	assert.False(t, run(p/2), "p-value %v passes a threshold below it", p)
	assert.True(t, run((p+1)/2), "p-value %v fails a threshold above it", p)
	assert.Equal(t, p < normality.DefaultThreshold, run(normality.DefaultThreshold))
}

func TestGroups_YieldsEveryGroup(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 3))
	kinds := []dayKind{normalDay, constantDay, normalDay}
	it := NewGroups(sample.NewSliceSource(buildDays(rng, 200, kinds...)), DefaultOptions())
	defer it.Close()

	var got []Classified
	for it.Next() {
		got = append(got, it.Classified())
	}
	require.NoError(t, it.Err())
	require.Len(t, got, 3)
	assert.True(t, got[1].Result.Degenerate)
	assert.False(t, got[1].Result.IsNormal)

	anomalies := 0
	for _, c := range got {
		if !c.Result.IsNormal {
			anomalies++
		}
	}
	assert.Equal(t, anomalies, it.Stats().Anomalies)
}

func TestParseInsufficientPolicy(t *testing.T) {
	p, err := ParseInsufficientPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, InsufficientSkip, p)

	_, err = ParseInsufficientPolicy("ignore")
	assert.Error(t, err)
}

type closeCounter struct {
	io.Reader
	closes int
}

func (c *closeCounter) Close() error {
	c.closes++
	return nil
}

package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ruh-integration-pages/internal/classifier"
	"ruh-integration-pages/internal/models"
	"ruh-integration-pages/internal/store"
	"ruh-integration-pages/internal/taxonomy"
)

type fakeResearch struct{ calls []string }

func (f *fakeResearch) Research(_ context.Context, name string) models.Research {
	f.calls = append(f.calls, name)
	return models.Research{Facts: "facts about " + name}
}

type fakeGen struct {
	fail map[string]error
}

func (f *fakeGen) Generate(_ context.Context, name string, r models.Research) (string, error) {
	if err := f.fail[name]; err != nil {
		return "", err
	}
	if r.Facts != "facts about "+name {
		return "", errors.New("research not passed through")
	}
	return "[Title]\n" + name + " + Ruh AI: Smarter Scheduling\n\n[One-line connector statement]\nConnect " + name +
		" with Ruh AI to book meetings automatically.\n\n[Overview paragraph]\nRuh AI books meetings and syncs the calendar.\n\n" +
		"[Key Benefits]\n* Speed: Meetings booked faster.\n\n[FAQs]\nQ: One?\nA: Yes.\nQ: Two?\nA: Yes.\nQ: Three?\nA: Yes.\n", nil
}

type fakePublisher struct {
	result   models.PublishResult
	payloads []models.PublishPayload
}

func (f *fakePublisher) Publish(_ context.Context, p models.PublishPayload) models.PublishResult {
	f.payloads = append(f.payloads, p)
	return f.result
}

type env struct {
	pipeline *Pipeline
	store    store.Store
	gen      *fakeGen
	pub      *fakePublisher
	metrics  *Metrics
	out      string
	sleeps   []time.Duration
}

func newEnv(t *testing.T, list string, opts ...Option) *env {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "connectorList.json")
	require.NoError(t, os.WriteFile(path, []byte(list), 0o644))
	st, err := store.OpenJSONFile(path)
	require.NoError(t, err)

	e := &env{
		store:   st,
		gen:     &fakeGen{fail: map[string]error{}},
		pub:     &fakePublisher{result: models.PublishResult{Success: true, StatusCode: 201}},
		metrics: NewMetrics(prometheus.NewRegistry()),
		out:     filepath.Join(dir, "pages"),
	}
	cls := classifier.New(taxonomy.NewStore(
		[]models.TaxonomyEntry{{ID: 8, Name: "Scheduling", Keywords: []string{"meeting", "calendar"}}},
		[]models.TaxonomyEntry{{ID: 2, Name: "Sales", Keywords: []string{"book"}}},
	))
	base := []Option{
		WithPublisher(e.pub),
		WithClassifier(cls),
		WithOutputDir(e.out),
		WithMetrics(e.metrics),
		WithClock(func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }),
		WithSleep(func(_ context.Context, d time.Duration) error {
			e.sleeps = append(e.sleeps, d)
			return nil
		}),
	}
	e.pipeline = New(st, &fakeResearch{}, e.gen, append(base, opts...)...)
	return e
}

const threeConnectors = `[{"name":"HubSpot","published":true},{"name":"Cal.com","logo":"https://x/cal.png"},{"name":"Google Calendar"}]`

func TestStatus(t *testing.T) {
	e := newEnv(t, threeConnectors)
	st, err := e.pipeline.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Status{Total: 3, Published: 1, Unpublished: 2, Next: "Cal.com"}, st)
}

func TestNextSavesPublishesAndMarks(t *testing.T) {
	e := newEnv(t, threeConnectors)
	out, err := e.pipeline.Next(context.Background())
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, "Cal.com", out.Connector)
	assert.Equal(t, filepath.Join(e.out, "cal.com.txt"), out.File)
	require.NotNil(t, out.Publish)
	assert.True(t, out.Publish.Success)
	assert.Empty(t, out.Note)

	data, err := os.ReadFile(out.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Title]\nCal.com + Ruh AI")

	require.Len(t, e.pub.payloads, 1)
	p := e.pub.payloads[0]
	assert.Equal(t, "cal-com", p.Slug)
	assert.Equal(t, "https://x/cal.png", p.Icon)
	assert.Equal(t, []int{8}, p.Category)
	assert.Equal(t, []int{2}, p.Tags)
	assert.Equal(t, "One?", p.FAQs[0].Question)
	assert.Equal(t, "2025-01-02T03:04:05.000000Z", p.PublishedAt)

	st, _ := e.pipeline.Status(context.Background())
	assert.Equal(t, "Google Calendar", st.Next)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.PagesGenerated))
}

func TestGenerationFailureLeavesConnectorPending(t *testing.T) {
	e := newEnv(t, threeConnectors)
	e.gen.fail["Cal.com"] = errors.New("model overloaded")

	out, err := e.pipeline.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "model overloaded")
	assert.Empty(t, out.File)
	assert.Nil(t, out.Publish)
	assert.Empty(t, e.pub.payloads)
	assert.NoFileExists(t, filepath.Join(e.out, "cal.com.txt"))

	st, _ := e.pipeline.Status(context.Background())
	assert.Equal(t, "Cal.com", st.Next)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.PagesFailed))
}

func TestPublishFailureStillMarksPublished(t *testing.T) {
	e := newEnv(t, threeConnectors)
	e.pub.result = models.PublishResult{StatusCode: 500, Error: "HTTP 500: boom"}

	out, err := e.pipeline.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, retryNote, out.Note)
	assert.Equal(t, "HTTP 500: boom", out.Publish.Error)
	assert.FileExists(t, out.File)

	st, _ := e.pipeline.Status(context.Background())
	assert.Equal(t, 2, st.Published)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.PublishFailures))
}

func TestPublishingDisabled(t *testing.T) {
	e := newEnv(t, threeConnectors, WithPublisher(nil))
	out, err := e.pipeline.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Nil(t, out.Publish)
	assert.Empty(t, e.pub.payloads)

	_, err = e.pipeline.Republish(context.Background(), "Cal.com")
	require.ErrorIs(t, err, ErrPublishDisabled)
}

func TestNextWhenAllPublished(t *testing.T) {
	e := newEnv(t, `[{"name":"A","published":true}]`)
	_, err := e.pipeline.Next(context.Background())
	require.ErrorIs(t, err, ErrNoPending)
}

func TestBatchStopsWhenExhausted(t *testing.T) {
	e := newEnv(t, threeConnectors)
	rep, err := e.pipeline.Batch(context.Background(), 5, 3*time.Second)
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 2, rep.Succeeded)
	assert.Equal(t, 0, rep.Failed)
	assert.True(t, rep.Exhausted)
	require.Len(t, rep.Outcomes, 2)
	assert.Equal(t, "Google Calendar", rep.Outcomes[1].Connector)
	assert.FileExists(t, filepath.Join(e.out, "google-calendar.txt"))
	// slept after each of the two items because more iterations were allowed
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, e.sleeps)
}

func TestBatchNoSleepAfterLastItem(t *testing.T) {
	e := newEnv(t, threeConnectors)
	rep, err := e.pipeline.Batch(context.Background(), 2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Succeeded)
	assert.False(t, rep.Exhausted)
	assert.Equal(t, []time.Duration{time.Second}, e.sleeps)
}

func TestBatchCountsFailures(t *testing.T) {
	e := newEnv(t, threeConnectors)
	e.gen.fail["Cal.com"] = errors.New("down")
	rep, err := e.pipeline.Batch(context.Background(), 2, 0)
	require.NoError(t, err)
	// the failed connector stays first in line
	assert.Equal(t, 0, rep.Succeeded)
	assert.Equal(t, 2, rep.Failed)
	assert.Equal(t, "Cal.com", rep.Outcomes[1].Connector)
}

func TestBatchStopsOnCancelledSleep(t *testing.T) {
	e := newEnv(t, threeConnectors, WithSleep(func(context.Context, time.Duration) error {
		return context.Canceled
	}))
	rep, err := e.pipeline.Batch(context.Background(), 3, time.Second)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, rep.Succeeded)
}

func TestRepublishReadsSavedPage(t *testing.T) {
	e := newEnv(t, threeConnectors)
	_, err := e.pipeline.Next(context.Background())
	require.NoError(t, err)

	res, err := e.pipeline.Republish(context.Background(), "Cal.com")
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, e.pub.payloads, 2)
	assert.Equal(t, e.pub.payloads[0], e.pub.payloads[1])

	_, err = e.pipeline.Republish(context.Background(), "Nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = e.pipeline.Republish(context.Background(), "Google Calendar")
	require.Error(t, err)
}

func TestBuildPayloadWithoutTaxonomy(t *testing.T) {
	e := newEnv(t, threeConnectors, WithClassifier(classifier.FromFiles("missing-c.json", "missing-t.json")))
	p := e.pipeline.BuildPayload("Zoom", "", "[Title]\nZoom + Ruh AI\n\n[Overview paragraph]\nVideo calls.")
	assert.Equal(t, []int{}, p.Category)
	assert.Equal(t, []int{}, p.Tags)
	assert.Equal(t, "Zoom + Ruh AI", p.HeroTitle)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ClassificationFailures))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "google-calendar.txt", FileName("Google Calendar"))
	assert.Equal(t, "a-b-c.txt", FileName(`A/B\C`))
}

package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"egov-event-export/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func sampleArtifacts() *Artifacts {
	return &Artifacts{
		Events: []models.Event{
			{ID: models.IntNumber(1), Title: "Školení <ISDS> & spol.", CategoryLabel: "veřejná událost", Active: "ANO", Public: "NE", SystemImpact: "NE"},
			{ID: models.FloatNumber(2), Title: "Event #2.0", Active: "NE", Public: "NE", SystemImpact: "NE"},
		},
		Categories: []models.CategoryCount{
			{ID: 1, Label: "veřejná událost", Count: 1},
		},
		Offices: []models.OfficeEntry{
			{ID: "orgán-veřejné-moci/1", Label: "MV"},
		},
		Subsystems: []models.SubsystemEntry{
			{ID: "ISDS", Abbreviation: "ISDS", Label: "Informační systém datových schránek"},
		},
		Suggestions: nil,
	}
}

func TestFileWriter_WriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src", "data")
	w := NewFileWriter(dir, zap.NewNop())

	require.NoError(t, w.WriteAll(sampleArtifacts()))

	raw, err := os.ReadFile(filepath.Join(dir, EventsFile))
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "Školení <ISDS> & spol.")
	assert.Contains(t, text, "\n  {\n    \"id_zaznamu\": 1,")
	assert.Contains(t, text, "\"id_zaznamu\": 2.0")

	var events []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &events))
	assert.Len(t, events, 2)
	assert.Len(t, events[0], 34)

	raw, err = os.ReadFile(filepath.Join(dir, SuggestionsFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))

	for _, name := range []string{CategoriesFile, OfficesFile, SubsystemsFile} {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		var items []map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &items), name)
		assert.Len(t, items, 1, name)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestFileWriter_OneFailureDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, CategoriesFile), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, CategoriesFile, "keep"), []byte("x"), 0o644))

	w := NewFileWriter(dir, zap.NewNop())
	err := w.WriteAll(sampleArtifacts())

	require.Error(t, err)
	assert.Contains(t, err.Error(), CategoriesFile)

	for _, name := range []string{EventsFile, OfficesFile, SubsystemsFile, SuggestionsFile} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, statErr, name)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestFileWriter_OverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	w := NewFileWriter(dir, zap.NewNop())

	require.NoError(t, w.WriteAll(sampleArtifacts()))
	require.NoError(t, w.WriteAll(&Artifacts{}))

	raw, err := os.ReadFile(filepath.Join(dir, EventsFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestEncodeJSON_NoHTMLEscape(t *testing.T) {
	data, err := EncodeJSON(map[string]string{"a": "<b>ř</b>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"<b>ř</b>\"\n}\n", string(data))
}

func TestRedisMirror_MirrorAll(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	kv := NewRedisKVStore(client)
	m := NewRedisMirror("egov", kv, zap.NewNop())

	require.NoError(t, m.MirrorAll(context.Background(), sampleArtifacts()))

	assert.Equal(t, "egov:urady", m.Key(OfficesFile))

	raw, err := kv.Get(context.Background(), "egov:events")
	require.NoError(t, err)
	var events []models.Event
	require.NoError(t, json.Unmarshal([]byte(raw), &events))
	require.Len(t, events, 2)
	assert.Equal(t, models.FloatNumber(2), events[1].ID)

	raw, err = kv.Get(context.Background(), "egov:search-suggestions")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", raw)

	assert.Equal(t, time.Duration(0), mr.TTL("egov:isvs"))

	_, err = kv.Get(context.Background(), "egov:missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

type failingKV struct {
	failKey string
	stored  map[string]string
}

func (f *failingKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.stored[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return v, nil
}

func (f *failingKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if key == f.failKey {
		return assert.AnError
	}
	f.stored[key] = value
	return nil
}

func TestRedisMirror_JoinsFailures(t *testing.T) {
	kv := &failingKV{failKey: "p:categories", stored: make(map[string]string)}
	m := NewRedisMirror("p", kv, zap.NewNop())

	err := m.MirrorAll(context.Background(), sampleArtifacts())

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, kv.stored, 4)
}

func TestWorkbookWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "events.xlsx")
	w := NewWorkbookWriter(path, zap.NewNop())

	require.NoError(t, w.Write(sampleArtifacts()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(eventsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, models.ColID, rows[0][0])
	assert.Equal(t, models.ColServiceDeskID, rows[0][len(workbookColumns)-1])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Školení <ISDS> & spol.", rows[1][2])

	rows, err = f.GetRows(categoriesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "veřejná událost", "1"}, rows[1])
}

package updater

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/b3cal/internal/modules/calendar"
)

type fakeSource struct {
	data     []byte
	fetchErr error
	holidays []calendar.Holiday
	parseErr error
}

func (f *fakeSource) Fetch(ctx context.Context) ([]byte, error) {
	return f.data, f.fetchErr
}

func (f *fakeSource) Parse(data []byte) ([]calendar.Holiday, error) {
	return f.holidays, f.parseErr
}

type fakePublisher struct {
	paths []string
	err   error
}

func (f *fakePublisher) Publish(ctx context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

func nopLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// holidays2023 is the full 2023 national list.
func holidays2023() []calendar.Holiday {
	return []calendar.Holiday{
		{Date: date(2023, 12, 25), Name: "Natal"},
		{Date: date(2023, 1, 1), Name: "Confraternização Universal"},
		{Date: date(2023, 2, 20), Name: "Carnaval"},
		{Date: date(2023, 2, 21), Name: "Carnaval"},
		{Date: date(2023, 4, 7), Name: "Paixão de Cristo"},
		{Date: date(2023, 4, 21), Name: "Tiradentes"},
		{Date: date(2023, 5, 1), Name: "Dia do Trabalho"},
		{Date: date(2023, 6, 8), Name: "Corpus Christi"},
		{Date: date(2023, 9, 7), Name: "Independência do Brasil"},
		{Date: date(2023, 10, 12), Name: "Nossa Sr.a Aparecida - Padroeira do Brasil"},
		{Date: date(2023, 11, 2), Name: "Finados"},
		{Date: date(2023, 11, 15), Name: "Proclamação da República"},
	}
}

func TestRun_WritesSortedDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "holidays.csv")
	u := New(&fakeSource{data: []byte("xls"), holidays: holidays2023()}, path, nopLogger())

	result, err := u.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, path, result.Path)
	assert.Equal(t, 12, result.Count)
	assert.Equal(t, date(2023, 1, 1), result.First)
	assert.Equal(t, date(2023, 12, 25), result.Last)
	assert.Empty(t, result.Discrepancies)
	assert.False(t, result.Published)

	cal, err := calendar.LoadFile(path, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, 12, cal.Len())
	name, ok := cal.Name(date(2023, 4, 21))
	assert.True(t, ok)
	assert.Equal(t, "Tiradentes", name)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRun_StageErrors(t *testing.T) {
	fetchErr := errors.New("connection refused")
	parseErr := errors.New("not a workbook")

	tests := []struct {
		name   string
		source *fakeSource
		stage  Stage
		cause  error
	}{
		{"fetch", &fakeSource{fetchErr: fetchErr}, StageFetch, fetchErr},
		{"parse", &fakeSource{data: []byte("x"), parseErr: parseErr}, StageParse, parseErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "holidays.csv")
			result, err := New(tt.source, path, nopLogger()).Run(context.Background())

			require.Error(t, err)
			assert.Nil(t, result)
			var stageErr *StageError
			require.True(t, errors.As(err, &stageErr))
			assert.Equal(t, tt.stage, stageErr.Stage)
			assert.ErrorIs(t, err, tt.cause)

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "dataset must not be touched on failure")
		})
	}
}

func TestRun_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0644))

	u := New(&fakeSource{holidays: holidays2023()}, filepath.Join(blocker, "holidays.csv"), nopLogger())
	_, err := u.Run(context.Background())

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageWrite, stageErr.Stage)
}

func TestRun_StrictCrossCheck(t *testing.T) {
	incomplete := holidays2023()[1:]                       // drop Natal
	incomplete = append(incomplete[:4], incomplete[5:]...) // drop Tiradentes

	path := filepath.Join(t.TempDir(), "holidays.csv")

	result, err := New(&fakeSource{holidays: incomplete}, path, nopLogger()).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Discrepancies, 1, "Natal lies past the last fetched date")
	assert.Equal(t, date(2023, 4, 21), result.Discrepancies[0].Date)

	_, err = New(&fakeSource{holidays: incomplete}, path, nopLogger(), WithStrict(true)).Run(context.Background())
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageParse, stageErr.Stage)
}

func TestRun_Publish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.csv")
	publisher := &fakePublisher{}

	result, err := New(&fakeSource{holidays: holidays2023()}, path, nopLogger(), WithPublisher(publisher)).
		Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Published)
	assert.Equal(t, []string{path}, publisher.paths)
}

func TestRun_PublishFailureKeepsWrittenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.csv")
	publisher := &fakePublisher{err: errors.New("bucket not found")}

	result, err := New(&fakeSource{holidays: holidays2023()}, path, nopLogger(), WithPublisher(publisher)).
		Run(context.Background())

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StagePublish, stageErr.Stage)
	require.NotNil(t, result)
	assert.False(t, result.Published)
	assert.Equal(t, 12, result.Count)
	assert.FileExists(t, path)
}

func TestRefresh_SwapsProviderCalendar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.csv")
	provider := calendar.NewProvider(calendar.New(nil, nopLogger()), path, nopLogger())

	u := New(&fakeSource{holidays: holidays2023()}, path, nopLogger(), WithProvider(provider))
	_, err := u.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, provider.Current().Len())
	assert.True(t, provider.Current().IsHoliday(date(2023, 6, 8)))
}

func TestRefresh_FailureKeepsProviderCalendar(t *testing.T) {
	current := calendar.New([]calendar.Holiday{{Date: date(2023, 1, 1)}}, nopLogger())
	provider := calendar.NewProvider(current, "", nopLogger())

	u := New(&fakeSource{fetchErr: errors.New("timeout")}, filepath.Join(t.TempDir(), "h.csv"), nopLogger(),
		WithProvider(provider))
	_, err := u.Refresh(context.Background())

	require.Error(t, err)
	assert.Same(t, current, provider.Current())
}

func TestStageError_Message(t *testing.T) {
	err := &StageError{Stage: StageFetch, Err: errors.New("boom")}
	assert.Equal(t, "holiday update failed at fetch: boom", err.Error())
}

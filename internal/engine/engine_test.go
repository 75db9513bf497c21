package engine_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-word-finder/config"
	internalErrors "github.com/gcbaptista/go-word-finder/internal/errors"
	testutil "github.com/gcbaptista/go-word-finder/internal/testing"
	"github.com/gcbaptista/go-word-finder/services"
)

func TestEngine_Find(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	eng := testutil.CreateTestEngine(t, nil)

	testutil.RunFindTests(t, eng, root, []testutil.FindTestCase{
		{Name: "first file", Words: []string{"beta", "alpha"}, ExpectFound: true, ExpectedPath: "a.txt"},
		{Name: "nested file", Words: []string{"gamma", "delta", "beta"}, ExpectFound: true, ExpectedPath: "docs/guide.txt"},
		{Name: "words across blank lines", Words: []string{"alpha", "gamma"}, ExpectFound: true, ExpectedPath: "docs/notes.txt"},
		{Name: "last file", Words: []string{"omega"}, ExpectFound: true, ExpectedPath: "z.txt"},
		{Name: "empty word list", Words: nil, ExpectFound: true, ExpectedPath: "a.txt"},
		{
			Name:        "words split across files",
			Words:       []string{"alpha", "omega"},
			ExpectFound: false,
			ValidateFunc: func(t *testing.T, result *services.FindResult) {
				assert.Equal(t, 4, result.Stats.FilesScanned)
				assert.NotEmpty(t, result.QueryID)
			},
		},
	})
}

func TestEngine_FindInvalidRoot(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)

	_, err := eng.Find(context.Background(), services.FindQuery{Root: filepath.Join(t.TempDir(), "missing"), Words: []string{"x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidPath))
}

func TestEngine_FindHonorsSettingsAndOverrides(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		".hidden/a.txt": "needle\n",
		"b/b.txt":       "needle\n",
		"c.txt":         "needle\n",
	})

	eng := testutil.CreateTestEngine(t, func(s *config.Settings) {
		s.Search.SkipHidden = true
	})

	result, err := eng.Find(context.Background(), services.FindQuery{Root: root, Words: []string{"needle"}})
	require.NoError(t, err)
	assert.Equal(t, "b/b.txt", result.RelPath)

	result, err = eng.Find(context.Background(), services.FindQuery{Root: root, Words: []string{"needle"}, ExcludeDirs: []string{"b"}})
	require.NoError(t, err)
	assert.Equal(t, "c.txt", result.RelPath)

	showHidden := false
	result, err = eng.Find(context.Background(), services.FindQuery{Root: root, Words: []string{"needle"}, SkipHidden: &showHidden})
	require.NoError(t, err)
	assert.Equal(t, ".hidden/a.txt", result.RelPath)
}

func TestEngine_FindMaxLineBytesOverride(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.txt": "needle " + strings.Repeat("x", 100) + "\n",
		"b.txt": "needle\n",
	})
	eng := testutil.CreateTestEngine(t, nil)

	result, err := eng.Find(context.Background(), services.FindQuery{Root: root, Words: []string{"needle", "haystack"}, MaxLineBytes: 32})
	require.NoError(t, err)
	assert.False(t, result.Found)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, filepath.Join(root, "a.txt"), result.Skipped[0].Path)
}

func TestEngine_FindRecordsAnalytics(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	eng := testutil.CreateTestEngine(t, nil)

	_, err := eng.Find(context.Background(), services.FindQuery{Root: root, Words: []string{"alpha"}})
	require.NoError(t, err)
	_, err = eng.Find(context.Background(), services.FindQuery{Root: root, Words: []string{"alpha", "nope"}})
	require.NoError(t, err)

	dashboard := eng.Analytics().GetDashboardData()
	assert.Equal(t, 2, dashboard.TotalFinds)
	assert.InDelta(t, 0.5, dashboard.FoundRate, 0.001)
	require.NotEmpty(t, dashboard.PopularWords)
	assert.Equal(t, "alpha", dashboard.PopularWords[0].Word)
}

func TestEngine_Tree(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	eng := testutil.CreateTestEngine(t, nil)

	out, err := eng.Tree(services.TreeQuery{Root: root, Separator: "--"})
	require.NoError(t, err)

	expected := strings.Join([]string{
		filepath.Base(root),
		"--a.txt",
		"--docs",
		"----guide.txt",
		"----notes.txt",
		"--z.txt",
		"",
	}, "\n")
	assert.Equal(t, expected, out)

	_, err = eng.Tree(services.TreeQuery{Root: filepath.Join(root, "a.txt")})
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidPath))
}

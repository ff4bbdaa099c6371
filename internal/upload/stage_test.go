package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_PreservesRelativeStructure(t *testing.T) {
	dir, err := Stage([]File{
		{Name: "a/b.txt", Content: strings.NewReader("bee")},
		{Name: "a/c.txt", Content: strings.NewReader("sea")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	entries, err := os.ReadDir(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b.txt", entries[0].Name())
	assert.Equal(t, "c.txt", entries[1].Name())

	data, err := os.ReadFile(filepath.Join(dir, "a", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "sea", string(data))
}

func TestStage_FreshDirectoryEachTime(t *testing.T) {
	first, err := Stage(nil)
	require.NoError(t, err)
	second, err := Stage(nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(first)
		os.RemoveAll(second)
	})

	assert.NotEqual(t, first, second)
	info, err := os.Stat(first)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStage_BackslashNames(t *testing.T) {
	dir, err := Stage([]File{{Name: `proj\src\app.py`, Content: strings.NewReader("print(1)")}})
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	_, err = os.Stat(filepath.Join(dir, "proj", "src", "app.py"))
	require.NoError(t, err)
}

func TestStage_RejectsUnsafeNames(t *testing.T) {
	for _, name := range []string{"../escape.txt", "a/../../escape.txt", "/etc/passwd", "", ".."} {
		_, err := Stage([]File{{Name: name, Content: strings.NewReader("x")}})
		assert.ErrorIs(t, err, ErrUnsafePath, "name %q", name)
	}
}

func TestCleanName(t *testing.T) {
	got, err := cleanName("proj/./src//app.py")
	require.NoError(t, err)
	assert.Equal(t, "proj/src/app.py", got)
}

package utils

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := GetDatabaseURL()
	assert.ErrorContains(t, err, "DATABASE_URL not set")

	t.Setenv("DATABASE_URL", "mysql://root@localhost/app")
	url, err := GetDatabaseURL()
	require.NoError(t, err)
	assert.Equal(t, "mysql://root@localhost/app", url)
}

func TestLoadEnvLocalOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("MIGRAVIEW_TEST_A=base\nMIGRAVIEW_TEST_B=base\n"), 0644))
	require.NoError(t, os.WriteFile(".env.local", []byte("MIGRAVIEW_TEST_B=local\n"), 0644))
	t.Setenv("MIGRAVIEW_TEST_A", "")
	t.Setenv("MIGRAVIEW_TEST_B", "")
	os.Unsetenv("MIGRAVIEW_TEST_A")
	os.Unsetenv("MIGRAVIEW_TEST_B")

	LoadEnv(afero.NewOsFs())

	assert.Equal(t, "base", os.Getenv("MIGRAVIEW_TEST_A"))
	assert.Equal(t, "local", os.Getenv("MIGRAVIEW_TEST_B"))
}

func TestLoadEnvWithoutFiles(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.NotPanics(t, func() { LoadEnv(afero.NewOsFs()) })
}

func TestLoadEnvReadsThroughFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("MIGRAVIEW_TEST_C=base\nMIGRAVIEW_TEST_D=base\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("MIGRAVIEW_TEST_D=local\n"), 0644))
	t.Setenv("MIGRAVIEW_TEST_C", "from-process")
	t.Setenv("MIGRAVIEW_TEST_D", "from-process")

	LoadEnv(fs)

	assert.Equal(t, "from-process", os.Getenv("MIGRAVIEW_TEST_C"))
	assert.Equal(t, "local", os.Getenv("MIGRAVIEW_TEST_D"))
}

func TestLoadEnvIgnoresOsFilesWithMemFs(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("MIGRAVIEW_TEST_E=disk\n"), 0644))
	t.Setenv("MIGRAVIEW_TEST_E", "")
	os.Unsetenv("MIGRAVIEW_TEST_E")

	LoadEnv(afero.NewMemMapFs())

	_, set := os.LookupEnv("MIGRAVIEW_TEST_E")
	assert.False(t, set)
}

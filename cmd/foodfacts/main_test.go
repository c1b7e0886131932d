package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/foodfacts/config"
	"github.com/poiesic/foodfacts/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const sourceTSV = "code\tproduct_name\tbrands\tcountries\tenergy_100g\tfat_100g\tcarbohydrates_100g\tsugars_100g\tproteins_100g\n" +
	"001\tNutella\tFerrero\tFrance\t2252\t30.9\t57.5\t56.3\t6.3\n" +
	"002\tBaguette\t\tFrance\t1100\t1\t55\t3\t9\n" +
	"001\tNutella duplicate\tFerrero\tFrance\t2252\t30.9\t57.5\t56.3\t6.3\n" +
	"003\t\t\tGermany\t100\t1\t1\t1\t1\n" +
	"004\tLebkuchen\t\tGermany\t1600\t9\t70\t40\t5\n" +
	"005\tMineral water\t\tGermany\t\t\t\t\t\n"

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"foodfacts", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "INFO"} {
		assert.NoError(t, setupLogger(level), level)
	}
	err := setupLogger("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestCommands_Registered(t *testing.T) {
	app := newApp()
	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"clean", "import", "analyze", "summary", "verify", "serve", "init-config"}, names)
}

func TestInvalidLogLevelFlag(t *testing.T) {
	_, err := runApp(t, "--log-level", "loud", "init-config", filepath.Join(t.TempDir(), "x.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foodfacts.yaml")
	_, err := runApp(t, "init-config", path)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Sampling, cfg.Sampling)

	_, err = runApp(t, "init-config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = runApp(t, "init-config")
	assert.ErrorContains(t, err, "config path is required")
}

func TestPipeline_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "products.tsv")
	artifact := filepath.Join(dir, "cleaned.json")
	db := filepath.Join(dir, "db")
	require.NoError(t, os.WriteFile(source, []byte(sourceTSV), 0o644))

	out, err := runApp(t, "clean", "--source", source, "--output", artifact, "--target", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "PREPROCESSING SUMMARY")
	assert.Contains(t, out, "Final records:           3")

	out, err = runApp(t, "import", "--db", db, "--artifact", artifact, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted:  3")

	out, err = runApp(t, "import", "--db", db, "--artifact", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "import skipped")

	out, err = runApp(t, "analyze", "--db", db, "--limit", "5", "--top", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Average sugars per country")
	assert.Contains(t, out, "Top 2 products by energy")
	assert.Contains(t, out, "Nutella")

	out, err = runApp(t, "summary", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Total documents:  3")

	out, err = runApp(t, "verify", "--db", db, "--artifact", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "Match: YES")
}

func TestVerify_MismatchFails(t *testing.T) {
	dir := t.TempDir()
	artifact := filepath.Join(dir, "cleaned.json")
	require.NoError(t, os.WriteFile(artifact, []byte(`[{"product_name": "a"}]`), 0o644))

	out, err := runApp(t, "verify", "--db", filepath.Join(dir, "db"), "--artifact", artifact)
	require.Error(t, err)
	assert.ErrorIs(t, err, verify.ErrCountMismatch)
	assert.Contains(t, out, "Match: NO")
	assert.Contains(t, out, "Missing in store: 1 records")
}

func TestConfigFile_FlagsOverride(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "foodfacts.yaml")
	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "from-config")
	cfg.Store.BatchSize = 7
	require.NoError(t, cfg.SaveConfig(cfgPath))

	app := newApp()
	var seen *config.Config
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "probe",
		Flags: []cli.Flag{dbFlag(), &cli.IntFlag{Name: "batch-size"}},
		Action: func(c *cli.Context) error {
			var err error
			seen, err = loadConfig(c)
			return err
		},
	})
	app.Writer = &bytes.Buffer{}
	require.NoError(t, app.Run([]string{"foodfacts", "--config", cfgPath, "probe", "--db", "override"}))

	require.NotNil(t, seen)
	assert.Equal(t, "override", seen.Store.Path)
	assert.Equal(t, 7, seen.Store.BatchSize)
}

func TestConfigFile_Invalid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  batch_size: 0\n"), 0o644))

	_, err := runApp(t, "--config", cfgPath, "summary")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "batch_size"), err.Error())
}

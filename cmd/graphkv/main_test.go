package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typedb/typedb-sub037/config"
	"github.com/typedb/typedb-sub037/fault"
)

func testConfig(t *testing.T) (cfg *config.C) {
	cfg = config.Default()
	cfg.DataDir = t.TempDir()
	cfg.DBLogLevel = "off"
	cfg.BlockCacheMB = 8
	cfg.MemTableMB = 8
	cfg.GCInterval = 0
	return
}

func runArgs(t *testing.T, cfg *config.C, a *args, in string) (string, error) {
	var out bytes.Buffer
	err := run(a, cfg, &out, strings.NewReader(in))
	return out.String(), err
}

func mustRun(t *testing.T, cfg *config.C, a *args) string {
	out, err := runArgs(t, cfg, a, "")
	require.NoError(t, err)
	return out
}

func TestCommands(t *testing.T) {
	cfg := testConfig(t)
	out := mustRun(t, cfg, &args{Create: &createCmd{Name: "ks1"}})
	require.True(t, strings.HasPrefix(out, "created ks1 at "), out)
	_, err := runArgs(t, cfg, &args{Create: &createCmd{Name: "ks1"}}, "")
	require.ErrorIs(t, err, fault.ErrKeyspaceExists)

	out = mustRun(t, cfg, &args{List: &struct{}{}})
	require.Contains(t, out, "ks1\tversion 1\t")

	out = mustRun(t, cfg, &args{Dump: &dumpCmd{Name: "ks1"}})
	require.Contains(t, out, "SYSTEM")
	require.Contains(t, out, "ff00 = 0001")
	out = mustRun(t, cfg, &args{Dump: &dumpCmd{Name: "ks1", Prefix: "6e"}})
	require.Empty(t, out)
	_, err = runArgs(t, cfg, &args{Dump: &dumpCmd{Name: "ks1", Prefix: "zz"}}, "")
	require.Error(t, err)

	for prefix, want := range map[string]string{
		"vertex_entity_type": "6e0000 0\n",
		"STRUCTURE_RULE":     "f00000 0\n",
		"6e0000":             "aa6e00000000000000000000 0\n",
	} {
		out = mustRun(t, cfg, &args{NextID: &nextIDCmd{Name: "ks1", Prefix: prefix}})
		require.Equal(t, want, out, prefix)
	}
	_, err = runArgs(t, cfg, &args{NextID: &nextIDCmd{Name: "ks1", Prefix: "VERTEX_ENTITY"}}, "")
	require.Error(t, err)

	out = mustRun(t, cfg, &args{GC: &gcCmd{}})
	require.Equal(t, "collected ks1\n", out)

	_, err = runArgs(t, cfg, &args{Delete: &deleteCmd{Name: "ks1"}}, "n\n")
	require.Error(t, err)
	out = mustRun(t, cfg, &args{List: &struct{}{}})
	require.Contains(t, out, "ks1")
	out, err = runArgs(t, cfg, &args{Delete: &deleteCmd{Name: "ks1"}}, "yes\n")
	require.NoError(t, err)
	require.Contains(t, out, "deleted ks1")
	out = mustRun(t, cfg, &args{List: &struct{}{}})
	require.Empty(t, out)
	_, err = runArgs(t, cfg, &args{Dump: &dumpCmd{Name: "ks1"}}, "")
	require.ErrorIs(t, err, fault.ErrKeyspaceNotFound)
}

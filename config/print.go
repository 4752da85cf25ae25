package config

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"
)

// KV is an environment variable and its value.
type KV struct{ Key, Value string }

// KVSlice sorts by key.
type KVSlice []KV

func (kv KVSlice) Len() int           { return len(kv) }
func (kv KVSlice) Less(i, j int) bool { return kv[i].Key < kv[j].Key }
func (kv KVSlice) Swap(i, j int)      { kv[i], kv[j] = kv[j], kv[i] }

// EnvKV lists the `env` tagged fields of a config struct with their values.
// Pass the struct, not a pointer to it.
func EnvKV(cfg any) (m KVSlice) {
	t := reflect.TypeOf(cfg)
	v := reflect.ValueOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		if k == "" {
			continue
		}
		var val string
		switch x := v.Field(i).Interface().(type) {
		case string:
			val = x
		case int, int64, uint64, bool, time.Duration:
			val = fmt.Sprint(x)
		case []string:
			val = strings.Join(x, ",")
		}
		m = append(m, KV{k, val})
	}
	return
}

// PrintEnv renders the configuration as a shell script that sets it.
func PrintEnv(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintln(printer, "#!/usr/bin/env bash")
	kvs := EnvKV(*cfg)
	sort.Sort(kvs)
	for _, v := range kvs {
		_, _ = fmt.Fprintf(printer, "export %s=%s\n", v.Key, v.Value)
	}
}

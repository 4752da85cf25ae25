// Command graphkv administers the keyspaces of a graph database directory:
// it creates, lists, dumps, collects and deletes them, and reports the
// identifiers the next writer would be given.
//
// The database is configured from the environment, see graphkv help.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/profile"

	"github.com/typedb/typedb-sub037/config"
	"github.com/typedb/typedb-sub037/hex"
	"github.com/typedb/typedb-sub037/lol"
	"github.com/typedb/typedb-sub037/ratel"
	"github.com/typedb/typedb-sub037/ratel/iid"
	"github.com/typedb/typedb-sub037/ratel/keys/prefix"
)

type createCmd struct {
	Name string `arg:"positional,required" help:"keyspace name"`
}

type deleteCmd struct {
	Name string `arg:"positional,required" help:"keyspace name"`
	Yes  bool   `arg:"-y,--yes" help:"delete without asking"`
}

type dumpCmd struct {
	Name   string `arg:"positional,required" help:"keyspace name"`
	Prefix string `arg:"-p,--prefix" help:"only keys starting with these hex encoded bytes"`
	Limit  int    `arg:"-n,--limit" help:"stop after this many keys, 0 for all"`
}

type nextIDCmd struct {
	Name   string `arg:"positional,required" help:"keyspace name"`
	Prefix string `arg:"-p,--prefix,required" help:"a type prefix name such as VERTEX_ENTITY_TYPE, STRUCTURE_RULE, or a hex encoded type IID for its instances"`
}

type gcCmd struct {
	Name string `arg:"positional" help:"keyspace name, all keyspaces if omitted"`
}

type args struct {
	Create  *createCmd `arg:"subcommand:create" help:"create and initialise a keyspace"`
	List    *struct{}  `arg:"subcommand:list" help:"list keyspaces"`
	Delete  *deleteCmd `arg:"subcommand:delete" help:"delete a keyspace and its files"`
	Dump    *dumpCmd   `arg:"subcommand:dump" help:"print the keys and values of a keyspace"`
	NextID  *nextIDCmd `arg:"subcommand:next-id" help:"print the identifier the next writer would mint"`
	GC      *gcCmd     `arg:"subcommand:gc" help:"rewrite the stale parts of value logs now"`
	Env     *struct{}  `arg:"subcommand:env" help:"print the configuration as a shell script"`
	Profile string     `arg:"--profile" help:"write a cpu or mem profile of the run to the working directory"`
}

func main() {
	var a args
	p, err := arg.NewParser(arg.Config{Program: "graphkv"}, &a)
	if chk.E(err) {
		os.Exit(1)
	}
	if config.HelpRequested() {
		p.WriteHelp(os.Stderr)
		_, _ = fmt.Fprintln(os.Stderr)
		config.PrintHelp(config.Default(), os.Stderr)
		os.Exit(0)
	}
	p.MustParse(os.Args[1:])
	if p.Subcommand() == nil {
		p.Fail("missing subcommand")
	}
	var cfg *config.C
	if cfg, err = config.New(); chk.E(err) {
		log.F.F("configuration: %s", err)
		os.Exit(1)
	}
	lol.SetLogLevel(cfg.LogLevel)
	switch strings.ToLower(a.Profile) {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		p.Fail("--profile takes cpu or mem")
	}
	if a.Env != nil {
		config.PrintEnv(cfg, os.Stdout)
		return
	}
	if err = run(&a, cfg, os.Stdout, os.Stdin); err != nil {
		log.E.F("%s", err)
		os.Exit(1)
	}
}

func run(a *args, cfg *config.C, out io.Writer, in io.Reader) (err error) {
	var db *ratel.Database
	if db, err = ratel.Open(cfg); chk.E(err) {
		return
	}
	defer func() { chk.E(db.Close()) }()
	switch {
	case a.Create != nil:
		var ks *ratel.Keyspace
		if ks, err = db.Create(a.Create.Name); err != nil {
			return
		}
		_, _ = fmt.Fprintf(out, "created %s at %s\n", ks.Name(), ks.Path())
	case a.List != nil:
		for _, ks := range db.All() {
			_, _ = fmt.Fprintf(out, "%s\tversion %d\t%s\n", ks.Name(), ks.Version(), ks.Path())
		}
	case a.Delete != nil:
		if !a.Delete.Yes && !confirm(out, in, "delete keyspace "+a.Delete.Name) {
			return errorf.W("not deleted")
		}
		if err = db.Delete(a.Delete.Name); err != nil {
			return
		}
		_, _ = fmt.Fprintf(out, "deleted %s\n", a.Delete.Name)
	case a.Dump != nil:
		err = dump(db, a.Dump, out)
	case a.NextID != nil:
		err = nextID(db, a.NextID, out)
	case a.GC != nil:
		all := db.All()
		if a.GC.Name != "" {
			var ks *ratel.Keyspace
			if ks, err = db.Get(a.GC.Name); err != nil {
				return
			}
			all = []*ratel.Keyspace{ks}
		}
		ratio := float64(cfg.GCDiscardPercent) / 100
		for _, ks := range all {
			if err = ks.GCRun(ratio); err != nil {
				return
			}
			_, _ = fmt.Fprintf(out, "collected %s\n", ks.Name())
		}
	}
	return
}

func confirm(out io.Writer, in io.Reader, what string) bool {
	_, _ = fmt.Fprintf(out, "%s? [y/N] ", what)
	var answer string
	if _, err := fmt.Fscanln(in, &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func dump(db *ratel.Database, c *dumpCmd, out io.Writer) (err error) {
	var pre []byte
	if pre, err = hex.Dec(c.Prefix); err != nil {
		return errorf.E("prefix is not hex: %w", err)
	}
	var ks *ratel.Keyspace
	if ks, err = db.Get(c.Name); err != nil {
		return
	}
	var s *ratel.Session
	if s, err = ks.Session(); err != nil {
		return
	}
	defer func() { chk.E(s.Close()) }()
	var tx *ratel.Transaction
	if tx, err = s.Transaction(ratel.Read); err != nil {
		return
	}
	defer func() { chk.E(tx.Close()) }()
	it := tx.Storage().Iterate(pre)
	defer func() { chk.E(it.Close()) }()
	var n int
	for kv := range it.Seq() {
		name := "?"
		if p, perr := prefix.Of(kv.Key[0]); perr == nil {
			name = p.String()
		}
		_, _ = fmt.Fprintf(out, "%-22s %s = %s\n", name, hex.Enc(kv.Key), hex.Enc(kv.Value))
		if n++; c.Limit > 0 && n >= c.Limit {
			break
		}
	}
	if err = it.Err(); err != nil {
		return
	}
	log.D.F("dumped %d keys at snapshot %d", n, tx.Snapshot())
	return
}

func nextID(db *ratel.Database, c *nextIDCmd, out io.Writer) (err error) {
	var ks *ratel.Keyspace
	if ks, err = db.Get(c.Name); err != nil {
		return
	}
	gen := ks.KeyGenerator()
	if p, perr := prefix.ByName(strings.ToUpper(c.Prefix)); perr == nil {
		switch {
		case p == prefix.StructureRule:
			if next, ok := gen.PeekRuleID(); ok {
				_, _ = fmt.Fprintf(out, "%s %d\n", iid.Rule(next), next.Val)
				return
			}
		case p.IsType():
			if next, ok := gen.PeekTypeID(p); ok {
				var t iid.T
				if t, err = iid.Type(p, next); err != nil {
					return
				}
				_, _ = fmt.Fprintf(out, "%s %d\n", t, next.Val)
				return
			}
		default:
			return errorf.E("%s is not a type or rule prefix", p)
		}
		return errorf.E("%s counter is exhausted", p)
	}
	var typeIID []byte
	if typeIID, err = hex.Dec(c.Prefix); err != nil {
		return errorf.E("%q is neither a prefix name nor a hex type IID", c.Prefix)
	}
	var tp prefix.P
	if tp, _, err = iid.ParseType(typeIID); err != nil {
		return
	}
	next, ok := gen.PeekThingID(typeIID)
	if !ok {
		return errorf.E("instance counter of %s is exhausted", iid.T(typeIID))
	}
	thing, _ := tp.ThingOf()
	var t iid.T
	if t, err = iid.Thing(thing, typeIID, next); err != nil {
		return
	}
	_, _ = fmt.Fprintf(out, "%s %d\n", t, next.Val)
	return
}

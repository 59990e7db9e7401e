package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/cvdata-tools/internal/attri"
	"github.com/ironsheep/cvdata-tools/internal/config"
	"github.com/ironsheep/cvdata-tools/internal/fsutil"
)

func runAttri(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("attri", flag.ExitOnError)
	fromSQLite := fs.Bool("from-sqlite", false, "read the table from a SQLite snapshot instead of JSON")
	var where, set stringList
	fs.Var(&where, "where", "condition \"<attr> <op> <value>\" (repeatable, ANDed)")
	fs.Var(&set, "set", "assign \"<attr>=<value>\" to the selected items (repeatable)")
	out := fs.String("o", "", "write the updated table as JSON")
	snapshot := fs.String("sqlite", "", "write the updated table to a SQLite snapshot")
	names := fs.Bool("names", false, "print the attribute names instead of the selection")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: cvdata attri [options] table.json")
	}

	var m *attri.Manager
	var err error
	if *fromSQLite {
		m, err = attri.LoadSQLite(fs.Arg(0))
	} else {
		m, err = attri.FromFile(fs.Arg(0))
	}
	if err != nil {
		return err
	}

	if *names {
		return printJSON(m.AttriNames())
	}

	conds := make([]attri.Condition, 0, len(where))
	for _, expr := range where {
		c, err := attri.ParseCondition(expr)
		if err != nil {
			return err
		}
		conds = append(conds, c)
	}
	selected, err := m.Select(conds)
	if err != nil {
		return err
	}

	if len(set) > 0 {
		keys := make([]string, 0, len(selected))
		for k := range selected {
			keys = append(keys, k)
		}
		for _, kv := range set {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return fmt.Errorf("invalid -set %q, want <attr>=<value>", kv)
			}
			if len(keys) > 0 {
				m.SetAttri(strings.TrimSpace(name), attri.ParseValue(strings.TrimSpace(value)), keys...)
			}
		}
		log.WithFields(log.Fields{
			"items": len(keys),
			"attrs": len(set),
		}).Info("Updated attributes")
	}

	if *out != "" {
		if err := m.Dump(*out); err != nil {
			return err
		}
	}
	if *snapshot != "" {
		if err := m.SaveSQLite(*snapshot); err != nil {
			return err
		}
	}
	if *out == "" && *snapshot == "" {
		return printJSON(selected)
	}
	return nil
}

func runScan(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	ext := fs.String("ext", "", "file suffix to match, e.g. .jpg")
	follow := fs.Bool("follow", false, "descend into symlinked directories")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: cvdata scan [options] root")
	}
	files, err := fsutil.MakeDataset(fs.Arg(0), *ext, *follow)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

func runSyncRm(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("syncrm", flag.ExitOnError)
	strict := fs.Bool("strict", false, "require the exact same file name in source")
	dryRun := fs.Bool("dry-run", false, "list the files that would be deleted")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return errors.New("usage: cvdata syncrm [options] source target")
	}
	removed, err := fsutil.SyncRm(fs.Arg(0), fs.Arg(1), fsutil.SyncOptions{Strict: *strict, DryRun: *dryRun})
	if err != nil {
		return err
	}
	for _, f := range removed {
		fmt.Println(f)
	}
	return nil
}

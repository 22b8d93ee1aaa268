// Command inventoryctl inspects and maintains the saved inventory world held
// by the persistent store selected through INVENTORYCORE_* variables.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

var (
	exitFunc  = os.Exit
	openStore = core.OpenPersistentStore
)

const usage = `usage: inventoryctl [flags] <command>

commands:
  dump      print the saved world as indented JSON
  validate  report problems that would break a restore
  purge     delete the saved world
  seed      write a small demo world built through the engine

flags:
`

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inventoryctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	key := fs.String("key", core.SaveKey(), "store key holding the world")
	verbose := fs.Bool("v", false, "log at debug level")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	ctx := context.Background()
	store, err := openStore(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer func() {
		if closer, ok := store.(io.Closer); ok {
			if cerr := closer.Close(); cerr != nil {
				logger.WithError(cerr).Warn("close store")
			}
		}
	}()

	env := &cmdEnv{ctx: ctx, store: store, key: *key, logger: logger, stdout: stdout}
	if err := cmd(env); err != nil {
		_, _ = fmt.Fprintf(stderr, "%s failed: %v\n", fs.Arg(0), err)
		return 1
	}
	return 0
}

type cmdEnv struct {
	ctx    context.Context
	store  domain.PersistentStore
	key    string
	logger *logrus.Logger
	stdout io.Writer
}

var commands = map[string]func(*cmdEnv) error{
	"dump":     runDump,
	"validate": runValidate,
	"purge":    runPurge,
	"seed":     runSeed,
}

func runDump(env *cmdEnv) error {
	payload, err := env.store.Load(env.ctx, env.key)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no world saved at %s", env.key)
	}
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, payload, "", "  "); err != nil {
		return fmt.Errorf("world at %s is not JSON: %w", env.key, err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(env.stdout)
	return err
}

func runValidate(env *cmdEnv) error {
	world, err := domain.LoadJSON[domain.World](env.ctx, env.store, env.key)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("no world saved at %s", env.key)
	}
	if err != nil {
		return err
	}
	issues := domain.ValidateWorld(world)
	for _, issue := range issues {
		if _, err := fmt.Fprintln(env.stdout, issue.Error()); err != nil {
			return err
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d problem(s) in world at %s", len(issues), env.key)
	}
	items := 0
	for _, c := range world.Containers {
		items += c.ItemCount()
	}
	_, err = fmt.Fprintf(env.stdout, "world valid: %d root(s), %d item(s)\n", len(world.Containers), items)
	return err
}

func runPurge(env *cmdEnv) error {
	exists, err := env.store.KeyExists(env.ctx, env.key)
	if err != nil {
		return err
	}
	if !exists {
		_, err = fmt.Fprintf(env.stdout, "nothing saved at %s\n", env.key)
		return err
	}
	if err := env.store.DeleteKey(env.ctx, env.key); err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.stdout, "purged %s\n", env.key)
	return err
}

func runSeed(env *cmdEnv) error {
	cat, err := demoCatalog()
	if err != nil {
		return err
	}
	reg := core.NewRegistry(env.store, core.WithSaveKey(env.key), core.WithRegistryLogger(env.logger))
	svc := core.NewService(reg, cat, core.WithServiceLogger(env.logger))
	snaps, err := seedWorld(env.ctx, svc)
	if err != nil {
		return err
	}
	items := 0
	for _, s := range snaps {
		items += s.ItemCount()
	}
	_, err = fmt.Fprintf(env.stdout, "seeded %d root(s), %d item(s) at %s\n", len(snaps), items, env.key)
	return err
}

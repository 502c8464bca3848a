package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/robotalks/vlc.go/pkg/chat"
	"github.com/robotalks/vlc.go/pkg/cli/sh"
	"github.com/robotalks/vlc.go/pkg/env"
	fx "github.com/robotalks/vlc.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

// run owns e and closes it on every return path.
func run(runner *fx.Runner, e *env.Env) error {
	defer e.Close()
	if err := e.Setup(runner.Context); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	session := sh.NewSession(chat.NewHarness(e.A, e.B))
	shell := sh.New(session)
	session.Harness.Handler = shell

	ctx, cancel := context.WithCancel(runner.Context)
	runner.GoWith(ctx, e.Runners...)
	runner.GoWith(ctx, fx.NamedRun("shell", fx.RunFunc(func(ctx context.Context) error {
		defer cancel()
		return shell.Run(ctx)
	})))
	return runner.Wait()
}

func main() {
	flag.Parse()

	conf, err := env.Load()
	if err != nil {
		log.Fatalln(err)
	}
	if err = run(fx.NewRunner().HandleSignals(), conf.MustNewEnv()); err != nil {
		log.Fatalln(err)
	}
}

// Command rxdemo runs the catalog's example pipelines.
//
//	rxdemo [flags] run      print every signal of the examples through the logger
//	rxdemo [flags] serve    serve the examples as Server-Sent Events
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kbukum/rxkit/bootstrap"
	"github.com/kbukum/rxkit/config"
	"github.com/kbukum/rxkit/logger"
)

const (
	modeRun   = "run"
	modeServe = "serve"
)

func main() {
	flags := pflag.NewFlagSet("rxdemo", pflag.ExitOnError)
	configFile := flags.StringP("config", "c", "", "path to config.yml")
	envFile := flags.String("env-file", "", "path to a .env file")
	examples := flags.StringSliceP("example", "e", nil, "examples to run (default: all)")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: rxdemo [flags] [%s|%s]\n\n", modeRun, modeServe)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	mode := modeRun
	if flags.NArg() > 0 {
		mode = flags.Arg(0)
	}

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	if err := execute(context.Background(), mode, *examples, opts...); err != nil {
		// The configured logger may not exist yet; LOG_* variables still apply.
		logger.NewFromEnv("rxdemo").Error("rxdemo failed", logger.Fields(logger.FieldError, err.Error()))
		os.Exit(1)
	}
}

func execute(ctx context.Context, mode string, examples []string, opts ...config.LoaderOption) error {
	if mode != modeRun && mode != modeServe {
		return fmt.Errorf("unknown mode %q", mode)
	}

	var cfg Config
	if err := config.LoadConfig("rxdemo", &cfg, opts...); err != nil {
		return err
	}
	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	d, err := setup(app)
	if err != nil {
		return err
	}

	if mode == modeServe {
		if err := d.serve(app); err != nil {
			return err
		}
		return app.Run(ctx)
	}
	return app.RunTask(ctx, func(ctx context.Context) error {
		return d.runExamples(ctx, examples)
	})
}

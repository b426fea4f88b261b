package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/webhookx-io/showgate/app"
	"github.com/webhookx-io/showgate/config/modules"
)

var ANSWERS = map[string]bool{
	"y":   true,
	"yes": true,
	"n":   false,
	"no":  false,
}

func prompt(in io.Reader, out io.Writer, q string) bool {
	fmt.Fprint(out, "> "+q+" [Y/N] ")
	var answer string
	fmt.Fscan(in, &answer)
	return ANSWERS[strings.ToLower(answer)]
}

// withApp runs fn against an application built from the configuration flags.
func withApp(ctx context.Context, fn func(app *app.Application) error) error {
	cfg, err := initConfig(configurationFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = modules.LogLevelDebug
	}
	application, err := app.New(cfg)
	if err != nil {
		return errors.Wrap(err, "could not initialize")
	}
	defer func() { _ = application.Close() }()
	if err := application.Ping(ctx); err != nil {
		return errors.Wrap(err, "backend unavailable")
	}
	return fn(application)
}

// parseNow parses the --now flag, the current time when empty.
func parseNow(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid time '%s'", value)
	}
	return now, nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/metrics"
	"github.com/AdguardTeam/AdGuardUserRules/internal/version"
	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/sentryutil"
	"golang.org/x/sys/unix"
)

// Main is the entry point of application.
func Main() {
	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM)

	envs := errors.Must(parseEnvironment())
	errors.Check(envs.Validate())

	lvl := errors.Must(slogutil.VerbosityToLevel(envs.Verbosity))
	baseLogger := slogutil.New(&slogutil.Config{
		// Don't use [slogutil.NewFormat] here, because the value is validated.
		Format:       slogutil.Format(envs.LogFormat),
		AddTimestamp: bool(envs.LogTimestamp),
		Level:        lvl,
	})

	sentryutil.SetDefaultLogger(baseLogger, "")

	mainLogger := baseLogger.With(slogutil.KeyPrefix, "main")

	// Signal service startup now that we have the logs set up.
	branch := version.Branch()
	commitTime := version.CommitTime()
	buildVersion := version.Version()
	revision := version.Revision()
	mainLogger.InfoContext(
		ctx,
		"userrules starting",
		"version", buildVersion,
		"revision", revision,
		"branch", branch,
		"commit_time", commitTime,
	)

	// Error collector

	errColl := errors.Must(envs.buildErrColl())

	defer reportPanics(ctx, errColl, mainLogger)

	c := errors.Must(parseConfig(envs.ConfPath))

	errors.Check(c.Validate())

	// Building and running the service

	b := newBuilder(&builderConfig{
		envs:       envs,
		conf:       c,
		baseLogger: baseLogger,
		errColl:    errColl,
	})

	errors.Check(b.initMetrics(ctx))

	b.initDefaults(ctx)

	errors.Check(b.initKV(ctx))

	errors.Check(b.initSafari(ctx))

	errors.Check(b.initDNS(ctx))

	errors.Check(b.runMigration(ctx))

	b.mustInitDebugSvc(ctx)

	// Signal that the service is started.
	errors.Check(metrics.SetUpGauge(b.mtrcNamespace, b.promRegisterer, &metrics.BuildInfo{
		Version:   buildVersion,
		BuildTime: commitTime,
		Branch:    branch,
		Revision:  revision,
	}))

	// Unregister the signal behavior for ctx.
	stop()
	ctx = context.WithoutCancel(ctx)

	os.Exit(b.handleSignals(ctx))
}

// reportPanics reports all panics in Main using the error collector, logs them
// using l, and then repanics.  It should be called in a defer.
func reportPanics(ctx context.Context, errColl errcoll.Interface, l *slog.Logger) {
	v := recover()
	if v == nil {
		return
	}

	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("non-error panic: %v", v)
	}

	errColl.Collect(ctx, fmt.Errorf("panic in main: %w", err))
	if f, isFlusher := errColl.(errcoll.ErrorFlushCollector); isFlusher {
		f.Flush()
	}

	l.ErrorContext(ctx, "recovered from panic", slogutil.KeyError, err)
	slogutil.PrintStack(ctx, l, slog.LevelError)

	panic(v)
}

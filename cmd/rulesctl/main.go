// Command rulesctl inspects and edits the user rule lists kept in a rules
// directory while the service is stopped.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AdguardTeam/AdGuardUserRules/internal/defaultrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/errcoll"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules"
	"github.com/AdguardTeam/AdGuardUserRules/internal/userrules/filestorage"
	"github.com/AdguardTeam/AdGuardUserRules/internal/version"
	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/AdguardTeam/golibs/osutil"
	"github.com/spf13/cobra"
)

func main() {
	err := newRootCmd(os.Stderr).ExecuteContext(context.Background())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(osutil.ExitCodeFailure)
	}
}

// globalFlags are the flags shared by all subcommands.
type globalFlags struct {
	// dir is the rules directory.
	dir string

	// defaultsDir is the directory with the default rules for reset.  If
	// empty, reset empties the list.
	defaultsDir string

	// list is the identity of the list to work with.
	list string

	// verbose enables debug logging.
	verbose bool
}

// newRootCmd returns the root command.  Logs are written to logOut.
func newRootCmd(logOut io.Writer) (root *cobra.Command) {
	flags := &globalFlags{}

	root = &cobra.Command{
		Use:           "rulesctl",
		Short:         "Inspect and edit user rule lists",
		Version:       version.Version(),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dir, "dir", "./rules/", "rules directory")
	pf.StringVar(&flags.defaultsDir, "defaults-dir", "", "directory with the default rules")
	pf.StringVarP(&flags.list, "list", "l", "", "list identity, for example dns_blocklist")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	_ = root.MarkPersistentFlagRequired("list")

	root.AddCommand(
		listCmd(flags, logOut),
		addCmd(flags, logOut),
		modifyCmd(flags, logOut),
		removeCmd(flags, logOut),
		clearCmd(flags, logOut),
		resetCmd(flags, logOut),
		importCmd(flags, logOut),
	)

	return root
}

// newManager returns the manager of the list from flags.
func newManager(
	ctx context.Context,
	flags *globalFlags,
	logOut io.Writer,
) (m *userrules.Default, err error) {
	lvl := slog.LevelInfo
	if flags.verbose {
		lvl = slog.LevelDebug
	}

	logger := slogutil.New(&slogutil.Config{
		Output: logOut,
		Format: slogutil.FormatText,
		Level:  lvl,
	})

	var defaults userrules.DefaultsSource = defaultrules.Empty{}
	if flags.defaultsDir != "" {
		defaults = defaultrules.NewDir(&defaultrules.DirConfig{
			Logger: logger.With(slogutil.KeyPrefix, "defaultrules"),
			Dir:    flags.defaultsDir,
		})
	}

	storageConf := &filestorage.Config{
		Logger: logger.With(slogutil.KeyPrefix, "filestorage"),
		Dir:    flags.dir,
	}

	err = storageConf.Validate()
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	m, err = userrules.New(ctx, &userrules.Config{
		Logger:   logger.With(slogutil.KeyPrefix, "userrules"),
		ErrColl:  errcoll.NewWriterErrorCollector(logOut),
		Metrics:  userrules.EmptyMetrics{},
		Notifier: userrules.EmptyNotifier{},
		Storage:  filestorage.New(storageConf),
		Defaults: defaults,
		ID:       userrules.ID(flags.list),
	})
	if err != nil {
		// Don't wrap the error, because it's informative enough as is.
		return nil, err
	}

	return m, nil
}

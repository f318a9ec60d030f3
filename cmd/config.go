package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teemow/dovecot-archive/internal/archive"
)

// envPrefix prefixes the environment variables that mirror the flags,
// e.g. DOVECOT_ARCHIVE_DST_USER for --dst-user.
const envPrefix = "DOVECOT_ARCHIVE"

// Flag names, also used as config file keys.
const (
	flagUser               = "user"
	flagFolder             = "folder"
	flagDstUser            = "dst-user"
	flagDstRootFolder      = "dst-root-folder"
	flagBefore             = "before"
	flagSplitByYear        = "split-by-year"
	flagYearAsLastFolder   = "year-as-last-folder"
	flagCopy               = "copy"
	flagVerbose            = "verbose"
	flagNamespaceSeparator = "namespace-separator"
	flagDoveadm            = "doveadm"
	flagDryRun             = "dry-run"
	flagJSON               = "json"
	flagConfig             = "config"
)

// options holds the resolved settings of one invocation.
type options struct {
	Request archive.Request
	Before  string
	Verbose int
	Doveadm string
	DryRun  bool
	JSON    bool
}

// loadOptions layers flags over environment variables over the config file.
func loadOptions(cmd *cobra.Command) (options, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return options{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path, _ := cmd.Flags().GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return options{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return options{
		Request: archive.Request{
			User:        v.GetString(flagUser),
			Folders:     folders(v.Get(flagFolder)),
			DstUser:     v.GetString(flagDstUser),
			DstRoot:     v.GetString(flagDstRootFolder),
			SplitByYear: v.GetBool(flagSplitByYear),
			YearLast:    v.GetBool(flagYearAsLastFolder),
			Copy:        v.GetBool(flagCopy),
			Separator:   v.GetString(flagNamespaceSeparator),
		},
		Before:  v.GetString(flagBefore),
		Verbose: v.GetInt(flagVerbose),
		Doveadm: v.GetString(flagDoveadm),
		DryRun:  v.GetBool(flagDryRun),
		JSON:    v.GetBool(flagJSON),
	}, nil
}

// folders reads --folder values. A single string from the environment or the
// config file names one folder, spaces included.
func folders(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return []string{fmt.Sprint(value)}
}

// Package env fills unset command line flags from environment variables.
package env

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// GlobalPrefix prefixes every environment variable read by the tool.
const GlobalPrefix = "pegtree"

// CheckEnvironmentVariables sets each flag of command that was not given
// on the command line from the environment. The root command reads
// PEGTREE_<FLAG>; subcommands read PEGTREE_<COMMAND>_<FLAG>. Dashes in flag
// names become underscores.
func CheckEnvironmentVariables(command *cobra.Command) error {
	prefix := GlobalPrefix
	if command.Name() != GlobalPrefix {
		prefix = GlobalPrefix + "_" + command.Name()
	}
	return check(prefix, command.Flags())
}

// CheckPersistentFlags is like CheckEnvironmentVariables for the persistent
// flags of root, which are read as PEGTREE_<FLAG> whichever subcommand
// runs. Call it after CheckEnvironmentVariables so that the subcommand's
// variables take precedence.
func CheckPersistentFlags(root *cobra.Command) error {
	return check(GlobalPrefix, root.PersistentFlags())
}

func check(prefix string, flags *pflag.FlagSet) error {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix(prefix)

	var errs []string
	visit := func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if f.Changed || !v.IsSet(key) {
			return
		}
		if err := flags.Set(f.Name, fmt.Sprintf("%v", v.Get(key))); err != nil {
			errs = append(errs, err.Error())
		}
	}
	flags.VisitAll(visit)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("error mapping environment variables to command flags: %s", strings.Join(errs, "; "))
}

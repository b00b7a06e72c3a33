package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/plc-visualizer/plc2yaml/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "plc2yaml",
		Short: "Convert PLC element documentation exports into Modbus tag configuration",
		Long: `plc2yaml reads the element documentation section of a PLC export and
writes the Modbus coils and holding registers it finds as a tag folder
that the automation runtime can import.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bindFlags(cmd); err != nil {
				return err
			}
			return a.init()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./plc2yaml.yaml)")
	rootCmd.PersistentFlags().IntP("verbosity", "v", 0, "log verbosity (2 lists every skipped line)")

	rootCmd.AddCommand(
		newConvertCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	defer klog.Flush()
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		klog.Flush()
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"verbosity":    "log.verbosity",
	"format":       "convert.format",
	"begin-marker": "markers.begin",
	"end-marker":   "markers.end",
	"root-name":    "mapping.root_name",
	"coil-offset":  "mapping.coil_offset_correction",
	"range-check":  "mapping.offset_range_check",
	"port":         "server.port",
	"bind":         "server.bind_address",
	"data-dir":     "storage.data_directory",
}

// bindFlags binds the flags of the command being run. Subcommands share flag
// names, so binding happens once the command is known.
func (a *app) bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}
	return nil
}

// init loads the configuration and configures logging.
func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := initLogging(cfg.Log.Verbosity); err != nil {
		return err
	}
	if used := a.v.ConfigFileUsed(); used != "" {
		klog.V(1).Infof("Using config file: %s", used)
	}
	return nil
}

func initLogging(verbosity int) error {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	if err := fs.Set("logtostderr", "true"); err != nil {
		return err
	}
	return fs.Set("v", strconv.Itoa(verbosity))
}

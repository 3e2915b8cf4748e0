package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vitiral/rag/internal/config"
)

var (
	cfgFile  string
	rootPath string
	logFile  string
	debug    bool

	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docparse",
	Short: "Find declaration blocks in Rust-like source",
	Long: `docparse locates functions, enums, structs, traits and modules in source
text without a full parser. It prints the blocks of single files or serves
them to editors over the language server protocol.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupLogging,
	PersistentPostRunE: closeLogging,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .docparse.yaml in the root)")
	flags.StringVar(&rootPath, "root", "", "workspace root (defaults to current directory)")
	flags.StringVar(&logFile, "log", "", "log file path (defaults to stderr)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
}

// setupLogging sends the standard logger to the log file when one is given
func setupLogging(cmd *cobra.Command, args []string) error {
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		logCloser = f
	}

	if debug {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}
	return nil
}

func closeLogging(cmd *cobra.Command, args []string) error {
	if logCloser == nil {
		return nil
	}
	log.SetOutput(os.Stderr)
	err := logCloser.Close()
	logCloser = nil
	return err
}

// workspaceRoot returns the absolute workspace root
func workspaceRoot() (string, error) {
	if rootPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		return wd, nil
	}
	return filepath.Abs(rootPath)
}

// loadConfig loads the configuration for the workspace root
func loadConfig() (string, *config.Config, error) {
	root, err := workspaceRoot()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.NewLoader(root, cfgFile).Load()
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

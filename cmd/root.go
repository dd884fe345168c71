package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/mabhi256/gclog/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gclog",
	Short: "Parse JDK 8 garbage collector logs",
	Long: `gclog reads HotSpot GC logs written with -XX:+PrintGCDetails and turns them
into a per-cycle model with pause, heap and tenuring data.`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		slog.SetDefault(cfg.Log.NewLogger(cmd.ErrOrStderr()))
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install shell completions",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if !isInPath() {
			printPathInstructions(out)
			return nil
		}

		if !isShellSupported() {
			return fmt.Errorf("shell completion not supported for %s (supported: bash, zsh, fish, powershell)", detectShell())
		}

		if completionsExist() {
			fmt.Fprintln(out, "✅ Already configured!")
			return nil
		}

		fmt.Fprintln(out, "📦 Installing completions...")
		if err := installCompletions(cmd.Root(), out); err != nil {
			return fmt.Errorf("failed to install completions: %w", err)
		}
		fmt.Fprintln(out, "✅ Done! Restart your shell to enable tab completion.")
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func completionPaths(home string) map[string]string {
	return map[string]string{
		"bash":       filepath.Join(home, ".local/share/bash-completion/completions/gclog"),
		"zsh":        filepath.Join(home, ".zsh/completions/_gclog"),
		"fish":       filepath.Join(home, ".config/fish/completions/gclog.fish"),
		"powershell": filepath.Join(home, "gclog_completion.ps1"),
	}
}

func completionsExist() bool {
	home, _ := os.UserHomeDir()
	_, err := os.Stat(completionPaths(home)[detectShell()])
	return err == nil
}

func isShellSupported() bool {
	_, ok := completionPaths("")[detectShell()]
	return ok
}

func detectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}

	shell := os.Getenv("SHELL")
	if shell == "" {
		return "bash"
	}
	return filepath.Base(shell)
}

type completionConfig struct {
	genFunc     func(io.Writer) error
	activateCmd string
}

func installCompletions(rootCmd *cobra.Command, out io.Writer) error {
	home, _ := os.UserHomeDir()
	shell := detectShell()
	path := completionPaths(home)[shell]

	configs := map[string]completionConfig{
		"bash": {
			genFunc:     rootCmd.GenBashCompletion,
			activateCmd: "source " + path,
		},
		"zsh": {
			genFunc:     rootCmd.GenZshCompletion,
			activateCmd: fmt.Sprintf("fpath=(%s $fpath) && autoload -U compinit && compinit", filepath.Dir(path)),
		},
		"fish": {
			genFunc:     func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
			activateCmd: "complete --do-complete=gclog",
		},
		"powershell": {
			genFunc:     rootCmd.GenPowerShellCompletionWithDesc,
			activateCmd: ". " + path,
		},
	}

	completion, ok := configs[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s", shell)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := completion.genFunc(file); err != nil {
		return err
	}

	fmt.Fprintf(out, "🔄 Run this command to enable completions now:\n   %s\n", completion.activateCmd)
	return nil
}

func isInPath() bool {
	execPath, err := os.Executable()
	if err != nil {
		return false
	}

	paths := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	return slices.Contains(paths, filepath.Dir(execPath))
}

func printPathInstructions(out io.Writer) {
	execPath, _ := os.Executable()
	execDir := filepath.Dir(execPath)

	fmt.Fprintf(out, "❌ gclog not in PATH. Binary location: %s\n\n", execPath)

	if runtime.GOOS == "windows" {
		fmt.Fprintf(out, "Add to PATH: %s\n", execDir)
	} else {
		fmt.Fprintf(out, "Add to shell profile: export PATH=\"%s:$PATH\"\n", execDir)
		fmt.Fprintln(out, "Or copy to: /usr/local/bin")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: gclog.yaml in ., ./configs or ~/.config/gclog)")
	rootCmd.AddCommand(installCmd)
}

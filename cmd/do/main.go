package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/templui/incomeatlas/cmd/do/cmd"

	"github.com/spf13/cobra"
)

// sourceRoots are the trees compiled into bin/do. internal/ is included
// because migrations and seed data are embedded from there.
var sourceRoots = []string{"cmd/do", "internal"}

var sourceExts = []string{".go", ".sql", ".json"}

func main() {
	maybeRebuild()

	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Admin and development tools for incomeatlas",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.DevCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.SeedCmd())
	rootCmd.AddCommand(cmd.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func maybeRebuild() {
	exe, err := os.Executable()
	if err != nil || !strings.HasSuffix(exe, "bin/do") {
		return
	}

	info, err := os.Stat(exe)
	if err != nil {
		return
	}

	if !sourcesChangedSince(info.ModTime(), sourceRoots...) {
		return
	}

	fmt.Println("Sources changed, rebuilding bin/do...")
	build := exec.Command("go", "build", "-o", exe, "./cmd/do")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Println("Rebuild failed:", err)
		return
	}

	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
		fmt.Println("Re-exec failed:", err)
	}
}

// sourcesChangedSince reports whether any non-test source file under roots
// was modified after t. Missing roots are ignored.
func sourcesChangedSince(t time.Time, roots ...string) bool {
	changed := false
	for _, root := range roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !isSource(path) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if info.ModTime().After(t) {
				changed = true
				return filepath.SkipAll
			}
			return nil
		})
		if changed {
			return true
		}
	}
	return false
}

func isSource(path string) bool {
	if strings.HasSuffix(path, "_test.go") {
		return false
	}
	for _, ext := range sourceExts {
		if filepath.Ext(path) == ext {
			return true
		}
	}
	return false
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	isatty "github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gosyncd/gosyncd/pkg/cmd"
)

// statusFileTimeLayout matches the layout pkg/sync's status writer uses;
// it is the on-disk status file's wire format, not an internal detail of
// that package, so duplicating it here (rather than exporting it) keeps
// this command from depending on pkg/sync just to parse plain text.
const statusFileTimeLayout = "2006-01-02 15:04:05"

var statusConfiguration struct {
	stateDir string
}

func parseStatusFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fields := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, " : ")
		if !ok {
			continue
		}
		fields[key] = value
	}
	return fields, scanner.Err()
}

func formatRelative(value string) string {
	if value == "" || value == "-" {
		return "-"
	}
	when, err := time.ParseInLocation(statusFileTimeLayout, value, time.Local)
	if err != nil {
		return value
	}
	return humanize.Time(when)
}

func colorizeStatus(useColor bool, value string) string {
	if !useColor {
		return value
	}
	switch value {
	case "OK":
		return color.GreenString(value)
	case "FAILED":
		return color.RedString(value)
	default:
		return value
	}
}

func printStatus(fields map[string]string, useColor bool) {
	section := fields["section"]
	if section == "" {
		section = "(unknown)"
	}
	fmt.Printf("%s\n", section)
	fmt.Printf("\tAction: %s\n", fields["current action"])
	fmt.Printf("\tFull sync: %s (last %s, next %s)\n",
		colorizeStatus(useColor, fields["last full sync status"]),
		formatRelative(fields["last full sync"]),
		formatRelative(fields["next full sync"]))
	fmt.Printf("\tPartial sync: %s (last %s, next %s)\n",
		colorizeStatus(useColor, fields["last partial sync status"]),
		formatRelative(fields["last partial sync"]),
		formatRelative(fields["next partial sync"]))
	fmt.Printf("\tWatcher pid: %s\n", fields["watcher process pid"])
}

func statusMain(command *cobra.Command, arguments []string) error {
	useColor := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	paths := arguments
	if len(paths) == 0 {
		dir := filepath.Join(statusConfiguration.stateDir, "status")
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("no sync sets currently running")
				return nil
			}
			return fmt.Errorf("unable to list status directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	for i, path := range paths {
		fields, err := parseStatusFile(path)
		if err != nil {
			cmd.Warning(fmt.Sprintf("unable to read status file %q: %v", path, err))
			continue
		}
		if i > 0 {
			fmt.Println()
		}
		printStatus(fields, useColor)
	}

	return nil
}

var statusCommand = &cobra.Command{
	Use:   "status [status-file ...]",
	Short: "Display the status of one or more supervised sync sets",
	Run:   cmd.Mainify(statusMain),
}

func init() {
	flags := statusCommand.Flags()
	flags.StringVar(&statusConfiguration.stateDir, "state-dir", defaultStateDir(), "Directory containing status files")
}

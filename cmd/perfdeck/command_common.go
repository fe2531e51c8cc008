package main

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"

	"perfdeck/internal/types"
)

const (
	version = "dev"

	nameColumnWidth = 40
)

func printDimensions(output io.Writer, records []types.Record) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "KIND\tSLUG\tNAME\tUUID")
	for _, record := range records {
		ref := record.Ref()
		name := runewidth.Truncate(ref.Name, nameColumnWidth, "…")
		if m, ok := record.(types.Measure); ok && m.Units != "" {
			name = runewidth.Truncate(ref.Name+" ("+m.Units+")", nameColumnWidth, "…")
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", ref.Kind, ref.Slug, name, ref.UUID)
	}
	_ = writer.Flush()
}

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}

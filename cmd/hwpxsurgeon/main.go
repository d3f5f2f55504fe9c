package main

import (
	"fmt"
	"os"

	"github.com/hwpx-surgeon/hwpx-surgeon/pkg/hwpx"
)

func main() {
	fmt.Println("hwpx-surgeon - surgical HWPX document editor")
	fmt.Println("Version: 0.1.0")

	if len(os.Args) < 2 {
		fmt.Println("\nUsage: hwpxsurgeon <command> [arguments]")
		fmt.Println("\nCommands:")
		fmt.Println("  analyze <file> <section>    Report structural health of a section")
		fmt.Println("  repair <file> <section>     Remove orphan table closers and save")
		fmt.Println("  roundtrip <file>            Open and re-save a document unchanged")
		fmt.Println("  version                     Show version information")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Println("hwpx-surgeon version 0.1.0")
	case "analyze":
		runAnalyze(os.Args[2:])
	case "repair":
		runRepair(os.Args[2:])
	case "roundtrip":
		runRoundtrip(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runAnalyze(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: hwpxsurgeon analyze <file> <section>")
		os.Exit(1)
	}
	doc, sectionIndex := openOrExit(args[0], args[1])
	defer doc.Close()

	report, err := doc.AnalyzeXML(sectionIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("structure ok: %v\n", report.Structure.OK)
	for _, p := range report.Structure.Problems {
		fmt.Printf("  problem: %s\n", p)
	}
	fmt.Printf("tag balance ok: %v\n", report.TagBalance.Balanced)
	for _, imb := range report.TagBalance.Imbalances {
		fmt.Printf("  %s: opens=%d closes=%d (%s)\n", imb.Tag, imb.Opens, imb.Closes, imb.Suggestion)
	}
	fmt.Printf("orphan table closers: %d (missing closers: %d)\n", len(report.OrphanTblClose), report.MissingClosers)
}

func runRepair(args []string) {
	if len(args) < 2 {
		fmt.Println("usage: hwpxsurgeon repair <file> <section>")
		os.Exit(1)
	}
	doc, sectionIndex := openOrExit(args[0], args[1])
	defer doc.Close()

	removed, err := doc.RepairXML(sectionIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "repair: %v\n", err)
		os.Exit(1)
	}
	if removed == 0 {
		fmt.Println("nothing to repair")
		return
	}
	if err := doc.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("removed %d orphan closer(s), saved\n", removed)
}

func runRoundtrip(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: hwpxsurgeon roundtrip <file>")
		os.Exit(1)
	}
	doc, err := hwpx.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer doc.Close()

	if err := doc.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "save: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("roundtrip complete")
}

func openOrExit(path, sectionArg string) (*hwpx.Document, int) {
	doc, err := hwpx.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	var sectionIndex int
	if _, err := fmt.Sscanf(sectionArg, "%d", &sectionIndex); err != nil {
		fmt.Fprintf(os.Stderr, "invalid section index %q\n", sectionArg)
		os.Exit(1)
	}
	return doc, sectionIndex
}

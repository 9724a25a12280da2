// Command phyto extracts stimulus-discriminative features from plant
// bioelectric recordings and runs them through a reference classifier.
//
// Subcommands:
//
//	process  load block-directory recordings, segment them into labeled
//	         datapoints and persist them (CSV and/or sqlite)
//	learn    extract features through a configured pipeline, train the
//	         reference classifier and report validation accuracy
//	plot     render trace PNGs and feature charts
//	db       manage the feature database schema
package main

import (
	"fmt"
	"log"
	"os"
)

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(os.Args[2:])
	case "learn":
		runLearn(os.Args[2:])
	case "plot":
		runPlot(os.Args[2:])
	case "db":
		runDB(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `usage: phyto <command> [flags]

commands:
  process   segment raw recordings into labeled datapoints
  learn     extract features and evaluate the reference classifier
  plot      render trace plots and feature charts
  db        feature database migrations (up, down, version, force)

run 'phyto <command> -h' for command flags
`)
}

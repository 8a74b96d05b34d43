package cmd

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sweep "github.com/stance-sweep/stance-sweep/sweep"
)

var (
	// CLI flags shared by both sweep modes
	model     string // Classifier name (crossnet, memnet, transformer, ...)
	wordVec   string // Word embedding vector file path
	randCount int    // Number of random samples; 0 runs the exhaustive grid
	repeat    int    // Training runs per parameter set (fixed mode)
	folds     int    // Cross validation fold count (xval mode)
	rootPath  string // Root prefixed onto all data file paths
	outDir    string // Directory for the result CSV and log file
	seed      int64  // Seed for the random sampler and baseline folds
	logLevel  string // Log verbosity level
	spaceFile string // Optional YAML file with parameter space presets
	spaceName string // Preset name inside the space file

	// Per-mode data file flags
	trainFile string
	testFile  string
	dataFile  string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "stance-sweep",
	Short: "Hyperparameter sweep driver for stance classifiers",
}

// newSearch builds the sweep controller from the CLI flags.
func newSearch() *sweep.Search {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	if model == "" {
		logrus.Fatalf("Classifier name not provided. Exiting sweep.")
	}

	var space sweep.Candidates
	if spaceFile != "" {
		space, err = GetSpaceCandidates(spaceFile, spaceName)
		if err != nil {
			logrus.Fatalf("Unable to read space config: %v", err)
		}
		if space == nil {
			logrus.Fatalf("Space %q not found in %s", spaceName, spaceFile)
		}
	}

	s, err := sweep.NewSearch(sweep.SearchConfig{
		Model:   model,
		WordVec: wordVec,
		Rand:    randCount,
		Repeat:  repeat,
		Folds:   folds,
		Path:    rootPath,
		OutDir:  outDir,
		Seed:    seed,
		Space:   space,
	}, &sweep.BaselineTrainer{Seed: seed})
	if err != nil {
		logrus.Fatalf("Cannot start sweep: %v", err)
	}

	// mirror the sweep log into a file sharing the result basename
	logFile, err := os.Create(s.LogPath())
	if err != nil {
		logrus.Fatalf("Cannot create log file: %v", err)
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, logFile))

	return s
}

// fixedCmd sweeps on a fixed train/test split
var fixedCmd = &cobra.Command{
	Use:   "fixed",
	Short: "Sweep on a fixed train/test split",
	Run: func(cmd *cobra.Command, args []string) {
		s := newSearch()
		logrus.Infof("Writing results to %s", s.CSVPath())
		if err := s.Fixed(trainFile, testFile); err != nil {
			logrus.Fatalf("Sweep aborted: %v", err)
		}
		logrus.Info("Sweep complete.")
	},
}

// xvalCmd sweeps under k-fold cross validation on a single dataset
var xvalCmd = &cobra.Command{
	Use:   "xval",
	Short: "Sweep under k-fold cross validation",
	Run: func(cmd *cobra.Command, args []string) {
		s := newSearch()
		logrus.Infof("Writing results to %s", s.CSVPath())
		if err := s.Xval(dataFile); err != nil {
			logrus.Fatalf("Sweep aborted: %v", err)
		}
		logrus.Info("Sweep complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Classifier name (crossnet, memnet, transformer, or an alias)")
	rootCmd.PersistentFlags().StringVar(&wordVec, "wordvec", "", "Word embedding vector file path")
	rootCmd.PersistentFlags().IntVar(&randCount, "rand", 0, "Number of random samples; 0 runs the exhaustive grid")
	rootCmd.PersistentFlags().IntVar(&repeat, "repeat", 3, "Training runs per parameter set (fixed mode)")
	rootCmd.PersistentFlags().IntVar(&folds, "cv", 3, "Cross validation fold count (xval mode)")
	rootCmd.PersistentFlags().StringVar(&rootPath, "path", ".", "Root path prefixed onto data file paths")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", ".", "Directory for the result CSV and log file")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for random parameter sampling")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&spaceFile, "space-file", "", "YAML file with parameter space presets")
	rootCmd.PersistentFlags().StringVar(&spaceName, "space", "default", "Preset name inside the space file")

	fixedCmd.Flags().StringVar(&trainFile, "train", "", "Training dataset CSV path")
	fixedCmd.Flags().StringVar(&testFile, "test", "", "Test dataset CSV path")
	xvalCmd.Flags().StringVar(&dataFile, "data", "", "Dataset CSV path")

	// Attach sweep modes as subcommands to `root`
	rootCmd.AddCommand(fixedCmd)
	rootCmd.AddCommand(xvalCmd)
}

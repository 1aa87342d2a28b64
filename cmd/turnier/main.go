package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/derekprior/turnier/internal/tournament"
)

const (
	defaultConfigFile = "turnier.yaml"
	defaultStateFile  = "turnier-state.yaml"
)

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if env := os.Getenv("TURNIER_CONFIG"); env != "" {
		return env, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory, set TURNIER_CONFIG or pass --config", defaultConfigFile)
}

func resolveStatePath(stateFlag string) string {
	if stateFlag != "" {
		return stateFlag
	}
	if env := os.Getenv("TURNIER_STATE"); env != "" {
		return env
	}
	return defaultStateFile
}

func main() {
	var (
		stateFile string
		verbose   bool
		a         = &app{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	)

	rootCmd := &cobra.Command{
		Use:   "turnier",
		Short: "Tournament schedule and bracket manager for 8 to 10 teams",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if verbose {
				a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			a.statePath = resolveStatePath(stateFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "", "Path to the state file (default: $TURNIER_STATE or "+defaultStateFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log what each step does")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter turnier.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Generate, check and retime the match list",
	}

	var configFile, workbookFile string
	var fresh bool
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Build the match list from the config, keeping recorded results",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return a.runGenerate(cmd.Context(), configPath, workbookFile, fresh)
		},
	}
	generateCmd.Flags().StringVar(&configFile, "config", "", "Path to config file (default: $TURNIER_CONFIG or turnier.yaml)")
	generateCmd.Flags().StringVarP(&workbookFile, "output", "o", "", "Also write an Excel workbook to this path")
	generateCmd.Flags().BoolVar(&fresh, "fresh", false, "Discard recorded results")

	validateCmd := &cobra.Command{
		Use:          "validate [schedule.xlsx]",
		Short:        "Check the match list, or an exported workbook, for inconsistencies",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			workbook := ""
			if len(args) == 1 {
				workbook = args[0]
			}
			return a.runValidate(workbook)
		},
	}

	var pause int
	retimeCmd := &cobra.Command{
		Use:   "retime [<match> <HH:MM>]",
		Short: "Recompute start times, optionally moving one entry first",
		Long: "Without arguments every time is recomputed from the configured start.\n" +
			"With a match id and a time, that entry starts at the given time and\n" +
			"everything after it moves along. --pause changes a break's length.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <match> <HH:MM>, got %d", len(args))
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.runRetime(cmd.Context(), "", "", pause)
			}
			return a.runRetime(cmd.Context(), args[0], args[1], pause)
		},
	}
	retimeCmd.Flags().IntVar(&pause, "pause", 0, "New length in minutes for a break entry")

	var clearResult bool
	var homeGoals, awayGoals int
	resultCmd := &cobra.Command{
		Use:   "result <match> [<home> <away>]",
		Short: "Record or clear a match result",
		Long: "Record both scores as <home> <away>, one side at a time with --home\n" +
			"or --away, or remove the result with --clear.",
		Args: func(cmd *cobra.Command, args []string) error {
			side := cmd.Flags().Changed("home") || cmd.Flags().Changed("away")
			switch {
			case clearResult && side:
				return fmt.Errorf("--clear cannot be combined with --home or --away")
			case clearResult || side:
				if len(args) != 1 {
					return fmt.Errorf("expected only the match id")
				}
			case len(args) != 3:
				return fmt.Errorf("expected <match> <home> <away>")
			}
			return nil
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearResult {
				return a.runResult(cmd.Context(), args[0], nil, nil)
			}
			if len(args) == 1 {
				var home, away *int
				if cmd.Flags().Changed("home") {
					if homeGoals < 0 {
						return fmt.Errorf("invalid score %d: must be a whole number of goals", homeGoals)
					}
					home = tournament.Score(homeGoals)
				}
				if cmd.Flags().Changed("away") {
					if awayGoals < 0 {
						return fmt.Errorf("invalid score %d: must be a whole number of goals", awayGoals)
					}
					away = tournament.Score(awayGoals)
				}
				return a.runSideResult(cmd.Context(), args[0], home, away)
			}
			home, err := parseGoals(args[1])
			if err != nil {
				return err
			}
			away, err := parseGoals(args[2])
			if err != nil {
				return err
			}
			return a.runResult(cmd.Context(), args[0], tournament.Score(home), tournament.Score(away))
		},
	}
	resultCmd.Flags().BoolVar(&clearResult, "clear", false, "Remove the recorded result")
	resultCmd.Flags().IntVar(&homeGoals, "home", 0, "Goals of the home side only")
	resultCmd.Flags().IntVar(&awayGoals, "away", 0, "Goals of the away side only")

	kickoffCmd := &cobra.Command{
		Use:          "kickoff <match>",
		Short:        "Mark a match as in progress",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runKickoff(cmd.Context(), args[0])
		},
	}

	standingsCmd := &cobra.Command{
		Use:          "standings",
		Short:        "Print the group tables",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStandings()
		},
	}

	var exportPath string
	exportCmd := &cobra.Command{
		Use:          "export",
		Short:        "Write the schedule, tables and team sheets to an Excel workbook",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(exportPath)
		},
	}
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "turnier.xlsx", "Output Excel file path")

	var renameConfig string
	renameCmd := &cobra.Command{
		Use:          "rename <old> <new>",
		Short:        "Rename a team everywhere it appears, config file included",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(renameConfig)
			if err != nil {
				configPath = ""
			}
			return a.runRename(cmd.Context(), configPath, args[0], args[1])
		},
	}
	renameCmd.Flags().StringVar(&renameConfig, "config", "", "Path to config file (default: $TURNIER_CONFIG or turnier.yaml)")

	scheduleCmd.AddCommand(generateCmd, validateCmd, retimeCmd)
	rootCmd.AddCommand(initCmd, scheduleCmd, resultCmd, kickoffCmd, standingsCmd, exportCmd, renameCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseGoals(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid score %q: must be a whole number of goals", s)
	}
	return n, nil
}

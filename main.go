package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/oxcrypt/oxprof/aggregate"
	"github.com/oxcrypt/oxprof/common"
	"github.com/oxcrypt/oxprof/compare"
	"github.com/oxcrypt/oxprof/config"
	"github.com/oxcrypt/oxprof/factory"
	"github.com/oxcrypt/oxprof/flamegraph"
	"github.com/oxcrypt/oxprof/logscan"
	"github.com/oxcrypt/oxprof/report"
	"github.com/oxcrypt/oxprof/runs"
	"github.com/oxcrypt/oxprof/taxonomy"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "oxprof"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
	envFile              = "./.env"
	envStatsCommand      = "STATS_COMMAND"
)

// appVersion should be populated at build time using ldflags
// Usage examples:
// Linux/macOS:
//
//	go build -v -ldflags="-X main.appVersion=$(git describe --all | cut -c7-32)
var appVersion = "undefined"
var fileLogging common.FileLoggingHandler

var (
	helpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}} command [command options]
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
COMMANDS:
   {{range .Commands}}{{join .Names ", "}}{{ "\t" }}{{.Usage}}
   {{end}}{{end}}{{if .VisibleFlags}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}{{end}}
VERSION:
   {{.Version}}
`

	log = logger.GetOrCreate("oxprof")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,sampler:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the sampler package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	// logSaveFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the tool will store logs.",
		Value: "",
	}
	// configFile points to the optional TOML configuration
	configFile = cli.StringFlag{
		Name:  "config",
		Usage: "The `path` to the configuration file. Built-in defaults are used when the file is absent.",
		Value: "./config.toml",
	}

	topFlag = cli.IntFlag{
		Name:  "top",
		Usage: "Number of hottest functions to display. 0 uses the configured value.",
		Value: 0,
	}
	treeFlag = cli.BoolFlag{
		Name:  "tree",
		Usage: "Use the structural tree walk instead of the flat scan. Needed when duplicate leaf labels carry independent counts.",
	}
	contentionFlag = cli.BoolFlag{
		Name:  "contention",
		Usage: "Use the finer contention taxonomy (Lock Wait split from Synchronization) and emit threshold diagnostics.",
	}
	artifactFlag = cli.StringFlag{
		Name:  "artifact",
		Usage: "Flame-graph file `name` looked up inside a run directory argument.",
		Value: "flamegraph.svg",
	}
	timingLogFlag = cli.StringFlag{
		Name:  "timing-log",
		Usage: "Benchmark output file `name` inside the resolved run directory.",
		Value: "concurrent_baseline.log",
	}
	debugLogFlag = cli.StringFlag{
		Name:  "debug-log",
		Usage: "Debug log file `name` inside the resolved run directory.",
		Value: "concurrent_debug.log",
	}
	dirFlag = cli.StringFlag{
		Name:  "dir",
		Usage: "The `directory` holding the benchmark report files. Empty uses the configured value.",
		Value: "",
	}
	baselineFlag = cli.StringFlag{
		Name:  "baseline",
		Usage: "The `label` of the baseline run, i.e. the <label>-<workload>.txt file prefix.",
		Value: "baseline",
	}
	candidateFlag = cli.StringFlag{
		Name:  "candidate",
		Usage: "The `label` of the candidate run to compare against the baseline.",
		Value: "phase1",
	}
	workloadsFlag = cli.StringFlag{
		Name:  "workloads",
		Usage: "Comma-separated workload `names`. Empty uses the configured value.",
		Value: "",
	}
	intervalFlag = cli.UintFlag{
		Name:  "interval",
		Usage: "Sampling interval in `seconds`. 0 uses the configured value.",
		Value: 0,
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = helpTemplate
	app.Name = "Encrypted filesystem profiling toolkit"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "Analyzes flame-graph artifacts, operation logs and benchmark reports of the encrypted " +
		"filesystem, and monitors its live statistics feed"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		configFile,
	}
	app.Commands = []cli.Command{
		{
			Name:      "flamegraph",
			Usage:     "Rank hot functions and break samples down by subsystem from a flame-graph artifact",
			ArgsUsage: "<svg file or profiles directory>",
			Flags:     []cli.Flag{topFlag, treeFlag, contentionFlag, artifactFlag},
			Action:    wrapAction(flamegraphCmd),
		},
		{
			Name:      "patterns",
			Usage:     "Extract operation counters and benchmark timing from the latest profiling run's logs",
			ArgsUsage: "[profiles directory]",
			Flags:     []cli.Flag{timingLogFlag, debugLogFlag},
			Action:    wrapAction(patternsCmd),
		},
		{
			Name:   "compare",
			Usage:  "Compare benchmark timings of two labeled runs, workload by workload",
			Flags:  []cli.Flag{dirFlag, baselineFlag, candidateFlag, workloadsFlag},
			Action: wrapAction(compareCmd),
		},
		{
			Name:      "monitor",
			Usage:     "Poll the live statistics feed and stream per-interval operation rates",
			ArgsUsage: "<duration in seconds>",
			Flags:     []cli.Flag{intervalFlag},
			Action:    wrapAction(monitorCmd),
		},
	}

	defer func() {
		if fileLogging != nil {
			_ = fileLogging.Close()
		}
	}()

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// wrapAction runs the shared global setup before each subcommand
func wrapAction(action func(ctx *cli.Context, cfg config.Config) error) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		cfg, err := setup(ctx)
		if err != nil {
			return err
		}

		return action(ctx, cfg)
	}
}

func setup(ctx *cli.Context) (config.Config, error) {
	saveLogFile := ctx.GlobalBool(logSaveFile.Name)
	workingDir := ctx.GlobalString(workingDirectory.Name)

	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return config.Config{}, err
	}

	fileLogging, err = common.AttachFileLogger(log, defaultLogsPath, logFilePrefix, saveLogFile, workingDir)
	if err != nil {
		return config.Config{}, err
	}

	if !check.IfNil(fileLogging) {
		timeLogLifeSpan := time.Second * time.Duration(logFileLifeSpanInSec)
		sizeLogLifeSpanInMB := uint64(logFileLifeSpanInMB)
		err = fileLogging.ChangeFileLifeSpan(timeLogLifeSpan, sizeLogLifeSpanInMB)
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg := loadConfig(ctx.GlobalString(configFile.Name))
	applyEnvOverrides(&cfg)

	return cfg, nil
}

func loadConfig(filepath string) config.Config {
	cfg, err := config.LoadConfig(filepath)
	if err != nil {
		log.Debug("using built-in configuration defaults", "reason", err)
		return config.DefaultConfig()
	}

	return *cfg
}

// applyEnvOverrides lets an optional .env file redirect the external
// stats command without touching the config file
func applyEnvOverrides(cfg *config.Config) {
	if _, err := os.Stat(envFile); err != nil {
		return
	}

	contents := map[string]string{
		envStatsCommand: "",
	}
	err := common.ReadEnvFile(envFile, contents)
	if err != nil {
		log.Warn("failed to read env file", "path", envFile, "error", err)
		return
	}

	cfg.Monitor.StatsCommand = contents[envStatsCommand]
	log.Debug("stats command overridden from env file", "command", cfg.Monitor.StatsCommand)
}

func flamegraphCmd(ctx *cli.Context, cfg config.Config) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing argument: path to a flame-graph artifact or a profiles directory")
	}

	path, err := runs.ResolveArtifact(ctx.Args().First(), cfg.Runs.RunPrefix, ctx.String(artifactFlag.Name))
	if err != nil {
		reportMissingArtifact(err)
		return nil
	}

	extract := flamegraph.ExtractFile
	if ctx.Bool(treeFlag.Name) {
		extract = flamegraph.ExtractTreeFile
	}

	samples, err := extract(path)
	if err != nil {
		reportMissingArtifact(err)
		return nil
	}

	log.Info("extracted samples", "artifact", path, "count", len(samples))

	categorizer := taxonomy.NewSubsystemCategorizer()
	contention := ctx.Bool(contentionFlag.Name)
	if contention {
		categorizer = taxonomy.NewContentionCategorizer()
	}

	topN := ctx.Int(topFlag.Name)
	if topN <= 0 {
		topN = cfg.Analysis.TopFunctions
	}

	agg, err := aggregate.NewAggregator(categorizer, topN, cfg.Analysis.TopPerCategory)
	if err != nil {
		return err
	}
	result := agg.Aggregate(samples)

	renderer, err := report.NewRenderer(os.Stdout, cfg.Analysis.DisplayWidth)
	if err != nil {
		return err
	}

	renderer.RenderHotspots(result)
	renderer.RenderCategories(result)
	if contention {
		renderer.RenderDiagnostics(report.ContentionRules(), result)
	}

	return nil
}

func patternsCmd(ctx *cli.Context, cfg config.Config) error {
	profilesDir := cfg.Runs.ProfilesDir
	if ctx.NArg() > 0 {
		profilesDir = ctx.Args().First()
	}

	runDir, err := runs.LatestRun(profilesDir, cfg.Runs.RunPrefix)
	if err != nil {
		reportMissingArtifact(err)
		return nil
	}

	log.Info("analyzing profiling run", "path", runDir)

	renderer, err := report.NewRenderer(os.Stdout, cfg.Analysis.DisplayWidth)
	if err != nil {
		return err
	}

	timingPath := filepath.Join(runDir, ctx.String(timingLogFlag.Name))
	timing, found, err := logscan.ExtractTimingFile(timingPath)
	if err != nil {
		log.Warn("benchmark output unavailable", "path", timingPath, "error", err)
		found = false
	}
	workloadName := strings.TrimSuffix(cfg.Runs.RunPrefix, "_") + " workload"
	renderer.RenderTiming(workloadName, timing, found)

	debugPath := filepath.Join(runDir, ctx.String(debugLogFlag.Name))
	counts, err := logscan.ScanOperationsFile(debugPath)
	if err != nil {
		log.Warn("debug log unavailable", "path", debugPath, "error", err)
		return nil
	}
	renderer.RenderOperationCounts(counts)

	return nil
}

func compareCmd(ctx *cli.Context, cfg config.Config) error {
	dir := ctx.String(dirFlag.Name)
	if len(dir) == 0 {
		dir = cfg.Compare.BenchmarksDir
	}

	workloads := cfg.Compare.Workloads
	if raw := ctx.String(workloadsFlag.Name); len(raw) > 0 {
		workloads = strings.Split(raw, ",")
	}

	if _, err := os.Stat(dir); err != nil {
		reportMissingArtifact(err)
		return nil
	}

	compare.CompareRuns(
		os.Stdout,
		dir,
		ctx.String(baselineFlag.Name),
		ctx.String(candidateFlag.Name),
		workloads,
	)

	return nil
}

func monitorCmd(ctx *cli.Context, cfg config.Config) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing argument: monitoring duration in seconds")
	}

	durationSecs, err := strconv.Atoi(ctx.Args().First())
	if err != nil || durationSecs <= 0 {
		return fmt.Errorf("invalid monitoring duration '%s'", ctx.Args().First())
	}

	if interval := ctx.Uint(intervalFlag.Name); interval > 0 {
		cfg.Monitor.SampleIntervalInSeconds = uint32(interval)
	}

	handler, err := factory.NewComponentsHandler(cfg.Monitor, os.Stdout)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("interrupt received, stopping the monitor")
		cancel()
	}()

	duration := time.Duration(durationSecs) * time.Second
	log.Info("monitoring live statistics feed",
		"duration", duration,
		"interval", time.Duration(cfg.Monitor.SampleIntervalInSeconds)*time.Second,
		"command", cfg.Monitor.StatsCommand)

	return handler.GetEngine().Run(runCtx, duration)
}

// reportMissingArtifact ends the run cleanly: a missing artifact is a
// normal failure path, reported without producing a report
func reportMissingArtifact(err error) {
	log.Error("cannot produce report", "error", err)
	fmt.Println("could not produce a report:", err.Error())
}

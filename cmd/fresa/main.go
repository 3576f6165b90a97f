// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/fresa/admin"
	"github.com/vechain/fresa/api"
	"github.com/vechain/fresa/cmd/fresa/httpserver"
	"github.com/vechain/fresa/log"
	"github.com/vechain/fresa/metrics"
	"github.com/vechain/fresa/processor"
	"github.com/vechain/fresa/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Fresa",
		Usage:     "Staking ledger with pools, referrals and stake weighted governance",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			persistFlag,
			configFlag,
			cacheFlag,
			dbCacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:   "config",
				Usage:  "print the effective ledger policy as yaml",
				Flags:  []cli.Flag{configFlag},
				Action: configAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	return writeConfig(os.Stdout, cfg)
}

func defaultAction(ctx *cli.Context) error {
	exitCtx := handleExitSignal()
	logLevel := initLogger(ctx)

	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	dataDir := ""
	if ctx.Bool(persistFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
	}

	mainDB, err := openMainDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing main database...")
		if err := mainDB.Close(); err != nil {
			logger.Warn("failed to close main database", "err", err)
		}
	}()

	logDB, err := openLogDB(ctx, dataDir)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing log database...")
		if err := logDB.Close(); err != nil {
			logger.Warn("failed to close log database", "err", err)
		}
	}()

	stater := state.NewStater(mainDB, ctx.Int(cacheFlag.Name))
	proc, err := processor.New(stater, cfg, processor.WithSink(logDB))
	if err != nil {
		return errors.Wrap(err, "create processor")
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler := api.New(proc, stater, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EnableReqLogger:      &apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
	})

	apiServer, err := httpserver.NewAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}

	servers := []*httpserver.Server{apiServer}
	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsServer, err := httpserver.NewMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		servers = append(servers, metricsServer)
		metricsURL = metricsServer.URL()
	}

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		probe := func() error {
			return proc.View(func(env *processor.Env) error {
				_, err := env.Ledger().Mint()
				return err
			})
		}
		url, closeFunc, err := admin.StartServer(ctx.String(adminAddrFlag.Name), logLevel, &apiLogs, probe)
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	printStartupMessage(dataDir, apiServer.URL(), metricsURL, adminURL)

	g, runCtx := errgroup.WithContext(exitCtx)
	for _, srv := range servers {
		g.Go(func() error { return srv.Run(runCtx) })
	}
	return g.Wait()
}

func printStartupMessage(dataDir, apiURL, metricsURL, adminURL string) {
	if dataDir == "" {
		dataDir = "in memory"
	}
	optional := func(url string) string {
		if url == "" {
			return "Disabled"
		}
		return url
	}
	fmt.Printf(`Starting %v
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		"Fresa/"+fullVersion(),
		dataDir,
		apiURL,
		optional(metricsURL),
		optional(adminURL),
	)
}

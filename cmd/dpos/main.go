// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/thor-dpos/api"
	"github.com/vechain/thor-dpos/cmd/dpos/solo"
	"github.com/vechain/thor-dpos/genesis"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/lvldb"
	"github.com/vechain/thor-dpos/metrics"
	"github.com/vechain/thor-dpos/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
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
		Name:      "dpos",
		Usage:     "Delegated proof of stake ledger running in solo mode",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			enableAPILogsFlag,
			blockIntervalFlag,
			poolLimitFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: soloAction,
		Commands: []cli.Command{
			{
				Name:   "dump-genesis",
				Usage:  "print the devnet genesis as yaml",
				Action: dumpGenesisAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}

	var (
		mainDB      *lvldb.LevelDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
		if mainDB, err = openMainDB(instanceDir); err != nil {
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return errors.Wrap(err, "open memory database")
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	if _, err := gene.Build(mainDB); err != nil {
		return errors.Wrap(err, "build genesis")
	}
	cfg, err := gene.DPoSConfig()
	if err != nil {
		return err
	}
	rt, err := runtime.New(mainDB, cfg)
	if err != nil {
		return err
	}
	pool := runtime.NewPool(rt.Signing(), ctx.Int(poolLimitFlag.Name))

	apiHandler := api.New(rt, pool, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closer, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); closer() }()
		metricsURL = url
	}

	printStartupMessage(gene, rt, instanceDir, apiURL, metricsURL)

	solo.New(rt, pool, solo.Options{
		BlockInterval: ctx.Uint64(blockIntervalFlag.Name),
	}).Run(exitSignal)
	return nil
}

func dumpGenesisAction(*cli.Context) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(genesis.NewDevnet())
}

func printStartupMessage(gene *genesis.Genesis, rt *runtime.Runtime, dataDir, apiURL, metricsURL string) {
	best, err := rt.GetBlock(rt.BestBlock())
	bestInfo := "unknown"
	if err == nil && best != nil {
		bestInfo = fmt.Sprintf("#%v @%v", best.Number, time.Unix(int64(best.Timestamp), 0))
	}
	if metricsURL == "" {
		metricsURL = "disabled"
	}

	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Best block   [ %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		"dpos "+fullVersion(),
		gene.ID(), gene.Name,
		bestInfo,
		dataDir,
		apiURL,
		metricsURL,
	)
}

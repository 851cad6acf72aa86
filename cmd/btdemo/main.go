/*
   Copyright 2024 Arborist Labs

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	bt "github.com/arborist-labs/behaviortree"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "btdemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a JSON/YAML tree config file; if empty, a built-in demo tree is used")
	tickRate := flag.Float64("tick-rate", 10, "tree tick rate, in Hz")
	maxWorkers := flag.Int("max-workers", 4, "bounded worker pool size for offloaded leaf callbacks")
	flag.Parse()

	registry := bt.DefaultRegistry()

	var root *bt.Node
	if *configPath != "" {
		cfg, err := bt.LoadTreeConfigFile(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		root, err = registry.Build(cfg.Root)
		if err != nil {
			return fmt.Errorf("building tree: %w", err)
		}
	} else {
		root = demoTree()
	}

	manager := bt.NewManager(root, bt.ManagerConfig{
		TickRate:   *tickRate,
		Logger:     slog.Default(),
		MaxWorkers: *maxWorkers,
	})
	defer manager.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("starting tree", "root", root.Name(), "tick_rate", *tickRate)
	if err := manager.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	fmt.Println(bt.String(root))
	stats := manager.GetStats()
	slog.Info("stopped", "total_ticks", stats.TotalTicks, "last_status", stats.LastStatus)
	return nil
}

func demoTree() *bt.Node {
	checkBattery := bt.Condition("check_battery", func(ctx context.Context) (bool, error) {
		return true, nil
	})
	recharge := bt.Action("recharge", func(ctx context.Context) (bt.ActionResult, error) {
		return bt.ActionSuccess, nil
	}, bt.ActionOptions{})
	patrol := bt.Action("patrol", func(ctx context.Context) (bt.ActionResult, error) {
		return bt.ActionRunning, nil
	}, bt.ActionOptions{})

	chargeIfLow := bt.Selector("charge_if_low", bt.FreshMemory,
		checkBattery,
		recharge,
	)

	return bt.Sequence("root", bt.FreshMemory,
		chargeIfLow,
		patrol,
	)
}

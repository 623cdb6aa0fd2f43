// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"time"

	"github.com/relabs-tech/attitude_station/internal/app"
	"github.com/relabs-tech/attitude_station/internal/config"
)

func main() {
	configPath := flag.String("config", "./attitude_config.txt", "path to configuration file")
	watch := flag.Bool("watch", false, "keep dumping registers at the given interval")
	interval := flag.Duration("interval", time.Second, "watch interval")
	flag.Parse()

	log.Println("starting MPU6050 register debug tool")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunRegisterDebug(*watch, *interval); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kilianp07/ocppcs/infra/mqtt"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	strat := RandomAnswer{Delay: cfg.Latency, DropRate: cfg.DropRate, FaultRate: cfg.FaultRate}
	run(ctx, GenerateFleet(cfg.Count, cfg.IDPrefix, cfg, strat))
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.Broker, "broker", "tcp://localhost:1883", "MQTT broker URL")
	flag.IntVar(&cfg.Count, "count", 1, "number of charge points")
	flag.StringVar(&cfg.IDPrefix, "id-prefix", "CP", "charge box id prefix")
	flag.StringVar(&cfg.TopicPrefix, "topic-prefix", mqtt.DefaultTopicPrefix, "MQTT topic prefix")
	flag.DurationVar(&cfg.Latency, "latency", 50*time.Millisecond, "answer latency")
	flag.Float64Var(&cfg.DropRate, "drop-rate", 0, "probability of never answering")
	flag.Float64Var(&cfg.FaultRate, "fault-rate", 0, "probability of answering with a fault")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()
	return cfg
}

func run(ctx context.Context, cps []*SimulatedChargePoint) {
	var wg sync.WaitGroup
	for _, cp := range cps {
		wg.Add(1)
		go func(cp *SimulatedChargePoint) {
			defer wg.Done()
			if err := cp.Run(ctx); err != nil {
				log.Printf("%s: %v", cp.ID, err)
			}
		}(cp)
	}
	wg.Wait()
}

package main

import (
	"errors"
	"time"
)

// Config holds parameters for the simulator.
type Config struct {
	Broker      string
	Count       int
	IDPrefix    string
	TopicPrefix string
	Latency     time.Duration
	DropRate    float64
	FaultRate   float64
	Verbose     bool
}

// Validate checks the rates and the fleet size.
func (c *Config) Validate() error {
	if c.Broker == "" {
		return errors.New("broker is required")
	}
	if c.Count <= 0 {
		return errors.New("count must be positive")
	}
	if c.DropRate < 0 || c.DropRate > 1 || c.FaultRate < 0 || c.FaultRate > 1 {
		return errors.New("rates must be within [0,1]")
	}
	return nil
}

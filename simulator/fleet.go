package main

import "fmt"

// GenerateFleet creates n charge points with ids <prefix>0001..<prefix>NNNN.
func GenerateFleet(n int, prefix string, cfg Config, strat AnswerStrategy) []*SimulatedChargePoint {
	if n <= 0 {
		return nil
	}
	if prefix == "" {
		prefix = "CP"
	}
	cps := make([]*SimulatedChargePoint, n)
	for i := 0; i < n; i++ {
		cp := NewSimulatedChargePoint(fmt.Sprintf("%s%04d", prefix, i+1), cfg.Broker, strat)
		if cfg.TopicPrefix != "" {
			cp.TopicPrefix = cfg.TopicPrefix
		}
		cps[i] = cp
	}
	return cps
}

package main

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func roll() float64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Float64()
}

// Decision tells a charge point how to treat one request.
type Decision int

const (
	Answer Decision = iota
	Drop
	Fault
)

// AnswerStrategy decides whether and when a request is answered.
type AnswerStrategy interface {
	Decide(ctx context.Context) Decision
}

// AutoAnswer answers every request after an optional fixed delay.
type AutoAnswer struct {
	Delay time.Duration
}

func (a AutoAnswer) Decide(ctx context.Context) Decision {
	if !sleep(ctx, a.Delay) {
		return Drop
	}
	return Answer
}

// RandomAnswer drops or faults requests with the configured probabilities
// and waits for Delay before answering.
type RandomAnswer struct {
	Delay     time.Duration
	DropRate  float64
	FaultRate float64
}

func (r RandomAnswer) Decide(ctx context.Context) Decision {
	if r.DropRate > 0 && roll() < r.DropRate {
		return Drop
	}
	if !sleep(ctx, r.Delay) {
		return Drop
	}
	if r.FaultRate > 0 && roll() < r.FaultRate {
		return Fault
	}
	return Answer
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

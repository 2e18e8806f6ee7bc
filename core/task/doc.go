// Package task tracks the outcome of one operation sent to a set of charge
// points.
//
// A Task owns one Tracker per recipient. Each Tracker moves exactly once from
// Pending to a terminal state. Trackers of the same task share the task's
// lock, so a snapshot never observes a terminal tracker whose effect has not
// run yet.
package task

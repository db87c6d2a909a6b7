// Package featurize encodes episode snapshots for learning agents.
//
// Sentence encoders describe every visible entity as a fixed-width list
// of tokens led by its location; grid encoders place the same tokens in
// per-cell lists. Both append the task's side information and pad their
// output so every observation of an episode has the same shape.
package featurize

// Package batch discovers scene directories and fans the scene pipeline out
// across a fixed-size worker pool, aggregating results commutatively so the
// summary never depends on completion order.
package batch

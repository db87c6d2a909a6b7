// Package items provides the concrete entities of gridworld tasks: terrain
// (blocks, water, goals, breadcrumbs, pushable blocks), stateful switches
// and doors, and agents assembled from capabilities.
package items

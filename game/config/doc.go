// Package config manages task configurations stored as JSON files.
//
// Each file in the configs directory describes one task variant: the task
// name, map size range, turn penalty, hazard densities and task-specific
// knobs. Fields missing from a file keep the values of
// tasks.DefaultConfig.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadConfig("light_key")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Used when a session is created without naming a config
//	def := manager.GetDefault()
//
// Loaded configurations are validated with tasks.ValidateConfig and cached
// until RefreshCache is called.
package config

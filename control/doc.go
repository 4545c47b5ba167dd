// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics, logging and debug introspection for hioload-ran.
//
// Provides:
//   - YAML configuration with validation and a reloadable ConfigStore
//   - Prometheus metrics for grids, mapper, pools, slot pipeline and fronthaul
//   - A replaceable package logger (Logf / SetLogger)
//   - Debug probe registration and state export
package control

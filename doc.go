// Package fig defines and runs multi-container applications with Docker.
//
// # Overview
//
// Fig reads a fig.yml file describing a project's services, orders them
// so that every linked (depended-upon) service comes before the services
// that link to it, and fans lifecycle operations out across the ordered
// collection.
//
// The repository is organized around three layers:
//   - internal/project: ordered collection of services, bulk lifecycle operations
//   - internal/service: per-service container operations against the Engine API
//   - internal/deps: turns an unordered spec batch into start order
//
// # Architecture
//
//	┌─────────────────┐
//	│   CLI (cobra)   │
//	└────────┬────────┘
//	         │
//	┌────────▼────────┐       ┌─────────────────┐
//	│     project     │◄──────┤      deps       │
//	│  (fan-out ops)  │       │ (link ordering) │
//	└────────┬────────┘       └─────────────────┘
//	         │
//	┌────────▼────────┐
//	│     service     │
//	│  (Engine API)   │
//	└─────────────────┘
//
// # Usage
//
// Bring a project up:
//
//	fig up
//
// Build images, list containers, stop everything:
//
//	fig build
//	fig ps
//	fig stop
package fig

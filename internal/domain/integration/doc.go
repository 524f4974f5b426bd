// Package integration contains the domain model for marketplace integration:
// the canonical order representation shared by all platforms, the platform
// connection entity, and the port interfaces implemented by marketplace
// gateway adapters in the infrastructure layer.
package integration

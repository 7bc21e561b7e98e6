/*
Package types defines the data model shared by the daemonset controller.

Every value in this package is transient: it is built from a fresh ECS API
response during one reconciliation cycle and discarded when the cycle ends.
The authoritative state always stays with ECS.

Core types:
  - Nodes: container instance ARNs with status NodeStatusActive; only the count matters
  - Service: desired count, placement constraints and task definition reference
  - TaskDefinition / ContainerDefinition: docker labels per container
  - Decision: skip (with a Reason) or scale to a target count

The marker label (DefaultMarkerLabel, "ECS_DAEMONSET") is significant by
presence only, and only on the first container definition.
*/
package types

// Package services implements the driving port interfaces.
// Services contain the pipeline logic and orchestrate calls to driven
// ports (adapters): each stage of the identification-to-tree pipeline is a
// small service, and Pipeline sequences them.
//
// Services are pure Go with no external dependencies beyond uuid.
package services

// Package ui turns git subprocess events into concise console progress lines
// while detailed telemetry keeps flowing through the structured logger.
package ui

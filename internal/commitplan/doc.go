// Package commitplan splits the staged changes into logical commits and records them in plan order.
package commitplan

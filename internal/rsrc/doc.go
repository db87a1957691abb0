// Package rsrc defines runtime resources a runner starts before
// training and stops afterwards in reverse order. Resources report on
// or adjust the process environment.
package rsrc

// Package util holds small internal helpers not ready for public API stability.
package util

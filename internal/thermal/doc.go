// Package thermal provides the one-dimensional conduction primitives used by
// the layer column.
//
// Units follow the column convention: lengths in cm, areas in cm², temperatures
// in °C and heat flow in W.
package thermal

// Package config loads render jobs from YAML files.
//
// A job names the four values required to build the reconstruction engine
// (resolution, sample-rate, hop-length, iterations), optional engine tuning,
// the decoder to use and the ordered list of sources to render.
package config

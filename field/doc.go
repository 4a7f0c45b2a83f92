// Package field assembles magnitude segments into one contiguous field.
//
// A Sequence accumulates Segments (one per ingested visual source) and silence
// gaps, supports cheap concatenation of sequences sharing the same settings,
// and flattens into a single Field, the matrix consumed by the Griffin-Lim
// engine. Rows are frequency bins with row 0 the DC bin, columns are time steps.
package field

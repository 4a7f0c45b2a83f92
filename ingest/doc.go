// Package ingest turns decoded visual sources into magnitude segments.
//
// Decoders return grayscale grids with row 0 at the visual top. The Normalizer
// maps bytes to [0, 1] and flips every grid exactly once so that the top of a
// picture becomes the highest frequency bin. An Ingestor combines decoders and
// the Normalizer into per-source factories for still images, image lists and
// folders, videos, hand-drawn .npy grids and field snapshots.
package ingest

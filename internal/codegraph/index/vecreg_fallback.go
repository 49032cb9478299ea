//go:build !(sqlite_vec && cgo)

package index

// vectorTableAvailable is false when the binary was built without the
// sqlite_vec build tag (or without cgo): vec0 virtual tables and
// vec_distance_cosine are unavailable, and VectorWriter.IndexFiles/Search
// degrade to a no-op rather than failing the whole batch.
const vectorTableAvailable = false

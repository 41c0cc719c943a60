// Package formats provides parsers for mesh file formats used by scenes.
//
// Every loader produces a TriangleMesh, the indexed in-memory geometry
// that scene objects own and backends upload.
package formats

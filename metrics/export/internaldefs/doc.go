// Package internaldefs holds the stable metric name and bucket
// definitions shared by exporter implementations.
//
// Counter and histogram definitions live here so every exporter emits
// identical metric names and bucket boundaries. Changing a definition
// here changes all exporters at once.
package internaldefs

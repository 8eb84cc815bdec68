// Package output renders shardkv-cli results.
//
// Three formats are supported:
//
//   - table: aligned columns via text/tabwriter (default)
//   - json: indented JSON
//   - yaml: YAML via gopkg.in/yaml.v3
//
// Results are plain structs; field names come from their json tags so the
// three formats agree.
package output

// Package stock provides ready-made block helpers (panel and list) and a
// small net/http handler that lists the helpers registered on a registry as
// JSON, for editors and the preview server.
package stock

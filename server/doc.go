// Package server exposes the published snapshot over HTTP: JSON endpoints
// for the map frontend, a health check with staleness detection, and a
// websocket that pushes each freshly published snapshot.
package server

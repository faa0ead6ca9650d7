// Package ncbi holds the HTTP transport shared by the NCBI service clients.
//
// Every request carries the contact email and tool name NCBI asks callers to
// identify themselves with, plus the API key when one is configured. Requests
// pass through a token-bucket limiter sized to NCBI's published limits and
// are retried when the service answers 429 or a 5xx status.
//
// The service clients live in the blast and entrez subpackages.
package ncbi

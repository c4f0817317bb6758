// Package pipeline turns a list of mod names into a modpack archive.
//
// A build runs four stages over one per-run registry cache:
//
//	seed names -> enriched ModRecords -> resolved project ids -> downloads -> archive
//
// Resolution is tolerant: names without a search hit, non-mod hits, projects
// without a version for the target and versions without files are skipped and
// reported in the build's Skipped list. Archive assembly is strict by default:
// any failed fetch aborts the build and no archive is left behind. The
// best-effort archive policy relaxes that and records failed fetches as skips.
//
// Archive entries are named after the percent-decoded last path segment of
// each download URL, so a CDN path ending in "sodium-0.5.8%2Bmc1.20.1.jar"
// is stored as "sodium-0.5.8+mc1.20.1.jar".
package pipeline

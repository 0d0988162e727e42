// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for slipway.
//
// This package implements the Cobra command hierarchy for the slipway CLI:
// the verification commands (fmt, lint, check-features, test, audit), the
// combined all-checks/prepublish pipelines, the publish orchestration, and
// the version-pin queries.
package cmd

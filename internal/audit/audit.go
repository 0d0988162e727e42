// SPDX-License-Identifier: MPL-2.0

// Package audit runs the external security-advisory scanner over the
// dependency closure and filters the detected advisories through the
// workspace's curated suppression allow-list.
//
// The overall result is failure exactly when an advisory is detected that
// the allow-list does not name, and the failure reports exactly that
// unsuppressed subset so the operator can act precisely. Suppressions never
// expire; they are only removed by a deliberate manifest edit.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"slipway-cli/internal/toolrun"
)

type (
	// UnsuppressedAdvisoryError reports the advisories detected but absent
	// from the suppression allow-list. Sorted for stable output.
	UnsuppressedAdvisoryError struct {
		Advisories []string
	}

	// Auditor invokes the scanner and applies the allow-list.
	Auditor struct {
		// Scanner is the external advisory scan command. Its stdout is the
		// only scanner output the auditor reads; it must be the scanner's
		// JSON report.
		Scanner toolrun.Command
		// Suppressions is the allow-list as an ID set.
		Suppressions map[string]bool

		runner toolrun.Runner
		logger *log.Logger
	}

	// scanReport mirrors the scanner's JSON output layout
	// (cargo-audit style: vulnerabilities.list[].advisory.id).
	scanReport struct {
		Vulnerabilities struct {
			List []struct {
				Advisory struct {
					ID string `json:"id"`
				} `json:"advisory"`
			} `json:"list"`
		} `json:"vulnerabilities"`
	}
)

func (e *UnsuppressedAdvisoryError) Error() string {
	return fmt.Sprintf("unsuppressed advisories detected: %s", strings.Join(e.Advisories, ", "))
}

// NewAuditor creates an Auditor.
func NewAuditor(scanner toolrun.Command, suppressions map[string]bool, runner toolrun.Runner, logger *log.Logger) *Auditor {
	return &Auditor{Scanner: scanner, Suppressions: suppressions, runner: runner, logger: logger}
}

// Run scans the dependency closure and returns UnsuppressedAdvisoryError
// when the detected set minus the suppression set is non-empty.
//
// The scanner's exit status is deliberately ignored in favor of its report:
// scanners conventionally exit non-zero whenever anything is detected,
// including advisories the allow-list already covers. Only an unreadable
// report is an infrastructure failure.
func (a *Auditor) Run(ctx context.Context) error {
	a.logger.Info("scanning dependency closure for advisories")

	result, output := a.runner.RunCapture(ctx, a.Scanner)
	if result.Error != nil {
		return fmt.Errorf("advisory scanner failed to run: %w", result.Error)
	}

	detected, err := parseDetected(output)
	if err != nil {
		return fmt.Errorf("advisory scanner produced an unreadable report: %w", err)
	}

	unsuppressed := Unsuppressed(detected, a.Suppressions)
	if len(unsuppressed) > 0 {
		return &UnsuppressedAdvisoryError{Advisories: unsuppressed}
	}

	suppressedHits := 0
	for id := range detected {
		if a.Suppressions[id] {
			suppressedHits++
		}
	}
	a.logger.Info("audit clean", "detected", len(detected), "suppressed", suppressedHits)
	return nil
}

// Unsuppressed computes the sorted set difference detected \ suppressions.
func Unsuppressed(detected, suppressions map[string]bool) []string {
	var out []string
	for _, id := range maps.Keys(detected) {
		if !suppressions[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// parseDetected extracts the detected advisory ID set from the scanner's
// JSON report. An empty report (scanner printed nothing) means no findings.
func parseDetected(output string) (map[string]bool, error) {
	detected := make(map[string]bool)
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return detected, nil
	}

	var report scanReport
	if err := json.Unmarshal([]byte(trimmed), &report); err != nil {
		return nil, err
	}

	for _, vuln := range report.Vulnerabilities.List {
		if vuln.Advisory.ID != "" {
			detected[vuln.Advisory.ID] = true
		}
	}
	return detected, nil
}

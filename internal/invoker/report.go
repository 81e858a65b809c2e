// SPDX-License-Identifier: MPL-2.0

package invoker

import (
	"encoding/xml"
	"fmt"
	"os"
)

type (
	// TestSummary aggregates the counters of a structured XML test report.
	TestSummary struct {
		// Tests is the total number of tests run.
		Tests int `toml:"tests"`
		// Failures is the number of failed assertions.
		Failures int `toml:"failures"`
		// Errors is the number of tests that errored outside assertions.
		Errors int `toml:"errors"`
		// Skipped is the number of skipped tests.
		Skipped int `toml:"skipped"`
		// TimeSeconds is the reported wall time of the suite.
		TimeSeconds float64 `toml:"time_seconds"`
	}

	// junitSuite mirrors one <testsuite> element of a JUnit XML report.
	junitSuite struct {
		Tests    int     `xml:"tests,attr"`
		Failures int     `xml:"failures,attr"`
		Errors   int     `xml:"errors,attr"`
		Skipped  int     `xml:"skipped,attr"`
		Time     float64 `xml:"time,attr"`
	}

	// junitRoot accepts either a <testsuites> wrapper or a bare
	// <testsuite> root. pytest emits the former; older report writers
	// emit the latter.
	junitRoot struct {
		XMLName  xml.Name
		Tests    int          `xml:"tests,attr"`
		Failures int          `xml:"failures,attr"`
		Errors   int          `xml:"errors,attr"`
		Skipped  int          `xml:"skipped,attr"`
		Time     float64      `xml:"time,attr"`
		Suites   []junitSuite `xml:"testsuite"`
	}
)

// Passed reports whether the suite ran without failures or errors.
func (s *TestSummary) Passed() bool {
	return s.Failures == 0 && s.Errors == 0
}

// ParseJUnitFile reads a JUnit XML report and aggregates its suite counters.
func ParseJUnitFile(path string) (*TestSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read report '%s': %w", path, err)
	}
	return parseJUnit(data, path)
}

func parseJUnit(data []byte, path string) (*TestSummary, error) {
	var root junitRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("cannot parse report '%s': %w", path, err)
	}

	if root.XMLName.Local == "testsuite" {
		return &TestSummary{
			Tests:       root.Tests,
			Failures:    root.Failures,
			Errors:      root.Errors,
			Skipped:     root.Skipped,
			TimeSeconds: root.Time,
		}, nil
	}

	summary := &TestSummary{}
	for _, suite := range root.Suites {
		summary.Tests += suite.Tests
		summary.Failures += suite.Failures
		summary.Errors += suite.Errors
		summary.Skipped += suite.Skipped
		summary.TimeSeconds += suite.Time
	}
	return summary, nil
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	EnvironmentNotFoundId Id = iota + 1
	ScratchDirCreateFailedId
	RunnerNotFoundId
	TestRunFailedId
	ConfigLoadFailedId
	ReportMissingId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links shown under "See also"
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 {
		extraMd += "\n\n## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	environmentNotFoundIssue = &Issue{
		id: EnvironmentNotFoundId,
		mdMsg: `
# Environment not found!

The isolated Python environment named by VIRTUALENV does not exist, so the
test step cannot activate it.

## Things you can try:
- Check the VIRTUALENV value in your pipeline definition for typos
- Verify the environment was created by an earlier pipeline step:
~~~
$ conda env list
~~~
- Pass the environment root directly:
~~~
$ pytestci run --virtualenv /path/to/env
~~~`,
	}

	scratchDirCreateFailedIssue = &Issue{
		id: ScratchDirCreateFailedId,
		mdMsg: `
# Cannot create the scratch directory!

TMP_FOLDER could not be created. The test run uses it as its working
directory, so the step cannot continue.

## Common causes:
- A parent path component does not exist or is not a directory
- The CI agent user has no write permission on the parent
- The path contains characters invalid on this platform

## Things you can try:
- Point TMP_FOLDER at a writable location such as the agent temp dir
- Check permissions of the parent directory`,
	}

	runnerNotFoundIssue = &Issue{
		id: RunnerNotFoundId,
		mdMsg: `
# Test runner not found!

pytest was not found inside the activated environment.

## Things you can try:
- Verify the environment installs pytest:
~~~
$ python -m pip show pytest
~~~
- Check that the dependency-install step of the pipeline ran before this one
- Override the runner executable:
~~~
$ pytestci run --runner /path/to/pytest
~~~`,
	}

	testRunFailedIssue = &Issue{
		id: TestRunFailedId,
		mdMsg: `
# Test run failed!

The test runner exited with a non-zero status. pytestci propagates that
status as its own exit code so the CI job is marked failed.

## Things you can try:
- Inspect the structured report written to JUNITXML
- Re-run locally with the same extra flags:
~~~
$ pytestci run --dry-run
~~~
  and copy the rendered command line
- When CHECK_WARNINGS is enabled, deprecation and future warnings fail the
  run; look for -Werror entries in the failure output`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the pytestci configuration file.

## Configuration file locations:
- Linux: ~/.config/pytestci/config.cue
- macOS: ~/Library/Application Support/pytestci/config.cue
- Windows: %APPDATA%\pytestci\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ pytestci config init
~~~
- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
package: "sklearn"
durations: 20

runner: {
  shell: "native"
}
~~~`,
	}

	reportMissingIssue = &Issue{
		id: ReportMissingId,
		mdMsg: `
# Structured report not found!

The test runner finished but no JUnit XML report exists at the JUNITXML path,
so the CI dashboard will show no test results for this job.

## Common causes:
- The runner crashed before the report plugin could write the file
- JUNITXML points outside the scratch directory at an unwritable path

## Things you can try:
- Check the runner output above for an early crash
- Use an absolute JUNITXML path`,
	}

	issues = map[Id]*Issue{
		environmentNotFoundIssue.Id():    environmentNotFoundIssue,
		scratchDirCreateFailedIssue.Id(): scratchDirCreateFailedIssue,
		runnerNotFoundIssue.Id():         runnerNotFoundIssue,
		testRunFailedIssue.Id():          testRunFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		reportMissingIssue.Id():          reportMissingIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}

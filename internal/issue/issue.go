// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ScriptNotFoundId Id = iota + 1
	ContractViolationId
	ScriptFailedId
	InvalidLocationId
	InstallFailedId
	ConfigLoadFailedId
	RunAfterFailedId
	ScriptExistsId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
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

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	scriptNotFoundIssue = &Issue{
		id: ScriptNotFoundId,
		mdMsg: `
# No update script found!

wasupdate reads its update policy from a shell script, **wasupdate.sh** in the
current directory unless told otherwise.

## Things you can try:
- Create a starter script and edit it:
~~~
$ wasupdate init
~~~
- Point at an existing script with ` + "`--script path/to/script.sh`" + `
- Set ` + "`script:`" + ` in your config.cue`,
	}

	contractViolationIssue = &Issue{
		id: ContractViolationId,
		mdMsg: `
# The update script does not follow the contract!

The script must declare three top-level functions:

~~~sh
current_version() {
  echo "1.2.3"
}

latest_version() {
  echo "1.3.0"
}

install_version() {
  local version="$1"
  echo "https://example.com/app-${version}.zip"
}
~~~

## Things you can try:
- Declare the functions at the top level, not inside another function
- Use no positional parameters in the two version functions
- Bind the single parameter of install_version to a variable named ` + "`version`",
		extLinks: []HttpLink{"https://semver.org/"},
	}

	scriptFailedIssue = &Issue{
		id: ScriptFailedId,
		mdMsg: `
# The update script failed!

A policy function exited with an error or printed something that is not a
semantic version.

## Things you can try:
- Print exactly one version such as ` + "`1.4.0`" + ` (no ` + "`v`" + ` prefix)
- Check the stderr output shown above
- Only ` + "`fetch`, `jq`" + ` and ` + "`run`" + ` are available besides shell builtins
- Run external programs with ` + "`run program args...`",
		extLinks: []HttpLink{"https://semver.org/"},
	}

	invalidLocationIssue = &Issue{
		id: InvalidLocationId,
		mdMsg: `
# Invalid install location!

install_version must print either an absolute http(s) URL or a local file path.

## Things you can try:
- Include the scheme, e.g. ` + "`https://`" + `
- Check that the version is substituted into the printed location`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# The update could not be installed!

Downloading or unpacking the new release failed. Files already written to the
install directory are left in place.

## Things you can try:
- Check your network connection and that the URL is reachable
- Make sure the directory next to the executable is writable
- Use ` + "`--target-dir`" + ` to install somewhere else
- Increase ` + "`http.download_timeout`" + ` in config.cue for slow links`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or contains values the schema rejects.

## Example:
~~~cue
script: "wasupdate.sh"
http: { fetch_timeout: "30s", download_timeout: "30m" }
ui: output: "text"
~~~

## Things you can try:
- Check the CUE syntax
- Show the effective configuration:
~~~
$ wasupdate config show
~~~`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	runAfterFailedIssue = &Issue{
		id: RunAfterFailedId,
		mdMsg: `
# The post-update command failed!

The update itself finished; the command given after ` + "`--`" + ` could not be run
or exited with an error.

## Things you can try:
- Check the program name; wasupdate looks in PATH and next to its own executable
- Run the command by hand to see its output`,
	}

	scriptExistsIssue = &Issue{
		id: ScriptExistsId,
		mdMsg: `
# The script already exists!

` + "`wasupdate init`" + ` never overwrites an existing file.

## Things you can try:
- Remove or rename the existing file
- Write the starter script elsewhere with ` + "`--script other.sh`",
	}

	catalog = []*Issue{
		scriptNotFoundIssue,
		contractViolationIssue,
		scriptFailedIssue,
		invalidLocationIssue,
		installFailedIssue,
		configLoadFailedIssue,
		runAfterFailedIssue,
		scriptExistsIssue,
	}

	issues = indexCatalog(catalog)
)

func indexCatalog(list []*Issue) map[Id]*Issue {
	m := make(map[Id]*Issue, len(list))
	for _, i := range list {
		m[i.id] = i
	}
	return m
}

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := slices.Clone(catalog)
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}

// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	MissingEntryId Id = iota + 1
	MissingDependencyId
	DependencyCycleId
	InvalidExcludeId
	ConfigLoadFailedId
	PostProcessFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // tool documentation for this condition
	extLinks []HttpLink  // external links that might be useful for the user
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

// Render renders the issue as terminal Markdown using the named glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	missingEntryIssue = &Issue{
		id: MissingEntryId,
		mdMsg: `
# Entry file not found!

A build starts from one existing ` + "`.lua`" + ` file. The path given with
` + "`--input`" + ` is missing, is a directory, or does not end in ` + "`.lua`" + `.

## Things you can try:
- Pass the entry explicitly:
~~~
$ luadistill build -i src/main.lua
~~~
- Run the command from the project root so relative paths resolve`,
		extLinks: []HttpLink{"https://www.lua.org/manual/5.1/manual.html#pdf-require"},
	}

	missingDependencyIssue = &Issue{
		id: MissingDependencyId,
		mdMsg: `
# Required module not found!

A ` + "`require`" + ` names a module that has no file. Identifiers are mapped to
paths relative to the entry file's directory: ` + "`a.b.c`" + ` becomes ` + "`a/b/c.lua`" + `.
No bundle was written.

## Things you can try:
- Check the spelling of the module name in the requiring file
- Move the entry file so the module path is relative to it
- If the module is provided by the host (a C module, or a library installed
  with LuaRocks), exclude it so it is loaded natively:
~~~
$ luadistill build -i main.lua -x cjson,lfs
~~~
- Comment the require out with ` + "`--`" + ` on the same line if it is dead code`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Circular require detected!

Two or more modules require each other. The reported chain shows the order in
which files were entered.

## Things you can try:
- Break the cycle by moving the shared code into a third module
- Require the module lazily inside the function that uses it
- Accept the cycle and bundle anyway; the bundle raises a
  "loop or previous error loading module" error at runtime if the loop is hit:
~~~
$ luadistill build -i main.lua --cycle-policy allow
~~~`,
	}

	invalidExcludeIssue = &Issue{
		id: InvalidExcludeId,
		mdMsg: `
# Invalid package name in the exclude list!

Excluded names are emitted into the bundle as string literals and may only
contain letters, digits, ` + "`.`" + `, ` + "`_`" + `, ` + "`/`" + ` and ` + "`-`" + `.

## Things you can try:
- Separate names with commas and no other punctuation:
~~~
$ luadistill build -i main.lua -x cjson,socket.http
~~~
- Check the ` + "`excludes`" + ` list in your luadistill.cue`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file is not valid CUE or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ luadistill config show
~~~
- Write a fresh default file and compare:
~~~
$ luadistill config init --force
~~~
- Check ` + "`cycle_policy`" + ` (only "fail" or "allow") and ` + "`watch.debounce`" + ` (a duration such as "300ms")`,
		extLinks: []HttpLink{"https://cuelang.org/docs/"},
	}

	postProcessFailedIssue = &Issue{
		id: PostProcessFailedId,
		mdMsg: `
# Post-processing failed!

The bundle was written, but the minifier or the bytecode compiler exited with
an error. Its output is shown above.

## Things you can try:
- Check that the tools are installed and on your PATH:
~~~
$ luasrcdiet --version
$ luajit -v
~~~
- Point luadistill at the tools explicitly in luadistill.cue:
~~~cue
tools: {
	luasrcdiet: "/usr/local/bin/luasrcdiet"
	luajit:     "/usr/local/bin/luajit"
}
~~~
- Run the bundle with plain Lua first to rule out a syntax error`,
		extLinks: []HttpLink{
			"https://github.com/jirutka/luasrcdiet",
			"https://luajit.org/running.html",
		},
	}

	issues = map[Id]*Issue{
		missingEntryIssue.Id():      missingEntryIssue,
		missingDependencyIssue.Id(): missingDependencyIssue,
		dependencyCycleIssue.Id():   dependencyCycleIssue,
		invalidExcludeIssue.Id():    invalidExcludeIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		postProcessFailedIssue.Id(): postProcessFailedIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}

package agentdef

import (
	"regexp"
	"strings"
)

var headerPattern = regexp.MustCompile(`(?m)^[ \t]*\[\[?([^\[\]\n]+)\]\]?[ \t]*\r?$`)

const (
	keyToken   = `([A-Za-z0-9_-]+|"[^"\n]*"|'[^'\n]*')`
	valueToken = `("(?:[^"\\\n]|\\.)*"|'[^'\n]*'|[^,}\n]*)`
	// entryStart anchors a key at the start of a line or of an inline
	// table entry.
	entryStart = `(?m)(?:^|[{,])[ \t]*`
)

var (
	entryPattern      = regexp.MustCompile(entryStart + keyToken + `[ \t]*=[ \t]*` + valueToken)
	delegationPattern = regexp.MustCompile(`\b` + DelegationTool + `\b`)
)

// section is a slice of the artifact in two masked forms of equal length.
// Patterns that locate keys run over keys, so text inside single-line
// strings is never mistaken for a field; values are read back from text
// at the same offsets.
type section struct {
	text string // comments and multi-line string bodies blanked
	keys string // single-line string bodies blanked as well
}

func (s section) slice(i, j int) section {
	return section{text: s.text[i:j], keys: s.keys[i:j]}
}

// document is an artifact split into table regions. The top-level region
// has the empty name.
type document struct {
	regions map[string]section
}

func parseDocument(text string) *document {
	masked, keys := mask(text), maskStrings(text)
	doc := &document{regions: make(map[string]section)}

	name, start := "", 0
	for _, loc := range headerPattern.FindAllStringSubmatchIndex(masked, -1) {
		doc.add(name, masked[start:loc[0]], keys[start:loc[0]])
		name = normalizeTableName(masked[loc[2]:loc[3]])
		start = loc[1]
		doc.add(name, "", "")
	}
	doc.add(name, masked[start:], keys[start:])
	return doc
}

func (d *document) add(name, text, keys string) {
	s := d.regions[name]
	d.regions[name] = section{text: s.text + text, keys: s.keys + keys}
}

// normalizeTableName turns `[ agent . "run_config" ]` into "agent.run_config".
func normalizeTableName(raw string) string {
	parts := strings.Split(raw, ".")
	for i, p := range parts {
		parts[i] = keyName(p)
	}
	return strings.Join(parts, ".")
}

// keyName strips whitespace and quotes from a single key.
func keyName(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"'`)
}

func (d *document) hasTable(name string) bool {
	_, ok := d.regions[name]
	return ok
}

// region returns the masked body of a table, or "" when it is absent.
func (d *document) region(name string) string {
	return d.regions[name].text
}

// keyPattern matches key as a bare, basic-quoted, or literal-quoted key.
func keyPattern(key string) string {
	k := regexp.QuoteMeta(key)
	return `(?:` + k + `|"` + k + `"|'` + k + `')`
}

// hasStringField reports whether body assigns a non-empty single-line string
// to key on a line of its own.
func hasStringField(body, key string) bool {
	re := regexp.MustCompile(`(?m)^[ \t]*` + keyPattern(key) +
		`[ \t]*=[ \t]*(?:"(?:[^"\\\n]|\\.)+"|'[^'\n]+')[ \t]*\r?$`)
	return re.MatchString(body)
}

// hasMultilineField reports whether body opens a multi-line string for key.
func hasMultilineField(body, key string) bool {
	re := regexp.MustCompile(`(?m)^[ \t]*` + keyPattern(key) + `[ \t]*=[ \t]*(?:"""|''')`)
	return re.MatchString(body)
}

// inlineValue returns the part of s between open and close that follows
// `key = open`.
func inlineValue(s section, key string, open, close byte) (section, bool) {
	re := regexp.MustCompile(entryStart + keyToken + `[ \t]*=[ \t]*` +
		regexp.QuoteMeta(string(open)) + `([^` + regexp.QuoteMeta(string(close)) + `]*)` +
		regexp.QuoteMeta(string(close)))
	for _, m := range re.FindAllStringSubmatchIndex(s.keys, -1) {
		if keyName(s.text[m[2]:m[3]]) == key {
			return s.slice(m[4], m[5]), true
		}
	}
	return section{}, false
}

// schemaEntry is one key/value pair of the input schema. Value holds the
// string contents when IsString is set, or the raw token otherwise.
type schemaEntry struct {
	Value    string
	IsString bool
}

func parseValue(raw string) schemaEntry {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') {
		return schemaEntry{Value: raw[1 : len(raw)-1], IsString: true}
	}
	return schemaEntry{Value: raw}
}

// entries collects the `key = value` pairs of a table body or an inline
// table.
func entries(s section) map[string]schemaEntry {
	out := make(map[string]schemaEntry)
	for _, m := range entryPattern.FindAllStringSubmatchIndex(s.keys, -1) {
		out[keyName(s.text[m[2]:m[3]])] = parseValue(s.text[m[4]:m[5]])
	}
	return out
}

// dottedEntries collects `prefix.key = value` lines of a table body, where
// prefix is the dotted key path.
func dottedEntries(s section, prefix ...string) map[string]schemaEntry {
	re := regexp.MustCompile(`(?m)^[ \t]*` + strings.Repeat(keyToken+`[ \t]*\.[ \t]*`, len(prefix)) +
		keyToken + `[ \t]*=[ \t]*` + valueToken)

	out := make(map[string]schemaEntry)
	for _, m := range re.FindAllStringSubmatchIndex(s.keys, -1) {
		matched := true
		for i, want := range prefix {
			if keyName(s.text[m[2+2*i]:m[3+2*i]]) != want {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		k := 2 + 2*len(prefix)
		out[keyName(s.text[m[k]:m[k+1]])] = parseValue(s.text[m[k+2]:m[k+3]])
	}
	return out
}

// inputSchema extracts validation.input_schema, written inline in
// [validation], as its own [validation.input_schema] table, or as dotted
// keys.
func (d *document) inputSchema() (map[string]schemaEntry, bool) {
	var found []map[string]schemaEntry
	validation := d.regions["validation"]
	if inline, ok := inlineValue(validation, "input_schema", '{', '}'); ok {
		found = append(found, entries(inline))
	}
	if d.hasTable("validation.input_schema") {
		found = append(found, entries(d.regions["validation.input_schema"]))
	}
	for _, dotted := range []map[string]schemaEntry{
		dottedEntries(validation, "input_schema"),
		dottedEntries(d.regions[""], "validation", "input_schema"),
	} {
		if len(dotted) > 0 {
			found = append(found, dotted)
		}
	}
	if len(found) == 0 {
		return nil, false
	}

	merged := make(map[string]schemaEntry)
	for _, m := range found {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged, true
}

// allowsDelegation reports whether the tool allowlist mentions the
// delegation tool, in [agent.tools] or as an inline tools table in [agent].
func (d *document) allowsDelegation() bool {
	for _, name := range []string{"agent.tools", "agent"} {
		if list, ok := inlineValue(d.regions[name], "allowed_tools", '[', ']'); ok && delegationPattern.MatchString(list.text) {
			return true
		}
	}
	return false
}

func isTrue(e schemaEntry, ok bool) bool {
	return ok && !e.IsString && e.Value == "true"
}

// streams reports whether run_config enables streaming.
func (d *document) streams() bool {
	agent := d.regions["agent"]
	if isTrue(lookup(entries(d.regions["agent.run_config"]), "stream")) {
		return true
	}
	if isTrue(lookup(dottedEntries(agent, "run_config"), "stream")) {
		return true
	}
	if inline, ok := inlineValue(agent, "run_config", '{', '}'); ok {
		return isTrue(lookup(entries(inline), "stream"))
	}
	return false
}

func lookup(m map[string]schemaEntry, key string) (schemaEntry, bool) {
	e, ok := m[key]
	return e, ok
}

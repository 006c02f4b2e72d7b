package mcpserver

// MetadataFormat describes how documents and directories carry the metadata
// the sitemap is built from.
const MetadataFormat = `# Folio Metadata Format

The sitemap mirrors the content directory. Titles, descriptions, ordering
and visibility come from metadata attached to documents and directories.

## Document headers

A document may start with up to three ` + "`" + `%` + "`" + ` lines, read as title,
author and date in that order:

` + "```" + `text
% Getting started
% Jane Doe
% 2024-03-05
` + "```" + `

A line that starts with ` + "`" + `\s` + "`" + ` continues the previous value. Any
other non-blank line, indented or not, ends the header. After the ` + "`" + `%` + "`" + ` lines a YAML block may follow. It opens
with a line of three or more ` + "`" + `-` + "`" + ` and closes with a line of three or
more ` + "`" + `-` + "`" + ` or ` + "`" + `.` + "`" + `:

` + "```" + `yaml
---
description: First steps
index: "01"
hidden: false
---
` + "```" + `

When both define a key, the ` + "`" + `%` + "`" + ` lines win. Scanning stops at the first line that is neither.

## Directory metadata

A directory reads the first of these files, in this priority, merging the
rest underneath: ` + "`" + `metadata.yaml` + "`" + `, ` + "`" + `metadata.yml` + "`" + `, ` + "`" + `meta.yaml` + "`" + `,
` + "`" + `meta.yml` + "`" + `. They use the same format as a document header.

## Recognised keys

| Key | Effect |
|---|---|
| title, header | entry title (inherited from ancestors) |
| description, abstract | entry description (inherited) |
| index | sort key among siblings, compared as text (not inherited) |
| hidden | entry is listed but hidden |
| subsection | entry is rendered as a subsection |
| toplevel | directory is shown without its children |

A directory whose frontpage is ` + "`" + `index.md` + "`" + ` or a document named like the
directory links to that document. A directory with exactly one entry is
replaced by that entry.
`

package mcpserver

// NoteFormatContract describes the note file format that LLM consumers must
// follow when writing notes.
const NoteFormatContract = `# tilog Note Format Contract

A note is one Markdown file in the flat notes directory.

## File name

- The file name is a ULID followed by ` + "`.md`" + `, e.g. ` + "`01ARZ3NDEKTSV4RRFFQ69G5FAV.md`" + `.
- The ULID is the note's identifier and its creation time: the first 10
  characters encode the millisecond timestamp. Never reuse or edit it.
- Files with any other extension are ignored. Files whose name is not a valid
  ULID are rejected.

## Structure

` + "```" + `markdown
---
title: Human-readable title   # REQUIRED, a string
tags:                         # OPTIONAL, a list of strings
  - go
  - concurrency
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The file MUST start with the ` + "`---`" + ` metadata block.
2. ` + "`title`" + ` is required and must be a string.
3. ` + "`tags`" + ` is optional; when present it must be a list of strings.
   Tags are matched exactly, so ` + "`Go`" + ` and ` + "`go`" + ` are different tags.
4. Other metadata keys are allowed and ignored. A ` + "`date`" + ` key is ignored:
   the date always comes from the identifier.
5. Leading and trailing whitespace of the body is trimmed.

Use the ` + "`create_note`" + ` tool rather than writing files by hand; it picks the
identifier and checks the document before saving it.
`

package mcpserver

// SortRules describes the automatic line-sorting behaviour for LLM clients.
const SortRules = `# hyprtext Sort Rules

Every plain-text document is regrouped into four blocks after 500ms without
edits. Markdown (.md) documents are only sorted on edit, never on load.

## Classification

The category of a line is decided by its LAST non-whitespace character:

| Trailing char | Category    | Block |
|---------------|-------------|-------|
| ` + "`-`" + `           | Minus       | 1 (top) |
| ` + "`!`" + `           | Exclamation | 2 |
| anything else | Normal      | 3 |
| ` + "`+`" + `           | Plus        | 4 (bottom) |

Only the single trailing character counts: ` + "`x+-`" + ` is Minus. Empty and
whitespace-only lines are Normal.

## Ordering

Blocks are concatenated Minus, Exclamation, Normal, Plus. Inside a block the
original relative order of lines is kept (stable partition, not alphabetical).
Sorting an already sorted text changes nothing.

## Example

Input:

` + "```" + `
b
a-
c!
d
e+
` + "```" + `

Output:

` + "```" + `
a-
c!
b
d
e+
` + "```" + `

## Saving

Documents with a path are written to disk on every edit. Untitled documents
stay in memory until saved with an explicit path.
`

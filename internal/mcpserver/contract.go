package mcpserver

// DocumentFormatContract describes the canonical HTML subset that LLM
// consumers should follow when creating document bodies.
const DocumentFormatContract = `# Inkwell Document Format Contract

Every document body stored in Inkwell MUST be restricted to this HTML subset.

## Supported elements

` + "```" + `html
<h1>Top-level heading</h1>
<h2>Section heading</h2>
<h3>Subsection heading</h3>
<p>Paragraph text with <strong>bold</strong>, <em>italic</em> and
<a href="https://example.com">links</a>.</p>
<ul><li>Flat list item</li><li>Another item</li></ul>
<br>
` + "```" + `

## Rules

1. **The body is a flat sequence of blocks.** Headings (h1-h3), paragraphs
   and single-level unordered lists. No nesting of lists inside lists.
2. **Inline markup** is limited to ` + "`" + `strong` + "`" + `, ` + "`" + `em` + "`" + ` and ` + "`" + `a href` + "`" + `.
3. **Line breaks** inside a block use ` + "`" + `<br>` + "`" + `.
4. **Anything outside the subset degrades.** Tables, images, code blocks,
   blockquotes and nested lists survive storage but are reduced to their
   text content when the document is viewed or exported as Markdown. Do not
   rely on them.
5. **Attachments** are uploaded separately and referenced by absolute path:
   ` + "`" + `<img src="/attachments/filename.png" alt="description">` + "`" + ` — accepted,
   but dropped on Markdown export per rule 4.
6. **Encoding** is UTF-8. Escape literal ` + "`" + `<` + "`" + `, ` + "`" + `>` + "`" + ` and ` + "`" + `&` + "`" + ` as entities.

## Markdown mapping

The subset maps 1:1 onto the Markdown the editor's source view uses:
` + "`" + `#` + "`" + `/` + "`" + `##` + "`" + `/` + "`" + `###` + "`" + ` headings, ` + "`" + `**bold**` + "`" + `, ` + "`" + `*italic*` + "`" + `,
` + "`" + `[text](url)` + "`" + ` links and ` + "`" + `- ` + "`" + ` list items. Content that follows the
contract round-trips between the two views without loss.
`

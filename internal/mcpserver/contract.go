package mcpserver

// NoteFormatContract describes the canonical document format that authoring
// clients should follow so their contributions pass validation.
const NoteFormatContract = `# Note Format Contract

Every document in the corpus MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: What's new in SwiftUI       # REQUIRED – display title, slug source
kind: session                       # REQUIRED – session | overview | book
year: 2023                          # REQUIRED for kind: session
session: 10149                      # REQUIRED for kind: session
slug: wwdc23-10149                  # OPTIONAL – overrides the derived slug
cta: https://developer.example.com/videos/play/wwdc2023/10149/
contributors:                       # OPTIONAL – free-form handles
  - alice
  - bob
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **The metadata block is mandatory.** The ` + "`---`" + ` fences must be the
   first thing in the file. A missing or unterminated block fails validation.
2. **` + "`title`" + ` and ` + "`kind`" + ` are required.** Session notes additionally
   require ` + "`year`" + ` and ` + "`session`" + `.
3. **Slugs** default to the lowercased title with non-alphanumeric runs
   collapsed to ` + "`-`" + `. Set ` + "`slug`" + ` explicitly to override. Slugs must be
   unique across the corpus.
4. **Cross-references** use wikilinks: ` + "`[[other-slug]]`" + ` or
   ` + "`[[other-slug|display text]]`" + `. The target must resolve to a document
   slug, or validation reports a DanglingCrossReference.
5. **Images** use standard Markdown: ` + "`![caption](images/shot.png)`" + `. The
   name must exist in the asset store, or validation reports a
   MissingImageAsset. Remote ` + "`https://`" + ` images are not checked.
6. **Code fences** are quoted sample material. Links and image markers inside
   fences are never treated as references.
7. **Encoding** is UTF-8 with a trailing newline.
`

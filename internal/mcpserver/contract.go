package mcpserver

// RecordFormatContract describes how the misc notes document is separated
// into records and how records are stored in the snapshot.
const RecordFormatContract = `# notesift Record Format

## Misc notes document

The document named ` + "`misc_inputs`" + ` holds many notes separated by dates.

` + "```" + `text
Anything before the first date is ignored.
21/06/2024
Who is Mike?
22-06-2024
test again with the button
` + "```" + `

1. A separator is ` + "`DD/MM/YYYY`" + `. Day and month may have one or two digits.
   ` + "`-`" + ` and ` + "`.`" + ` are accepted in place of ` + "`/`" + `.
2. The date applies to the text that follows it, up to the next date.
3. A separator that is not a real calendar date (for example ` + "`32/01/2024`" + `)
   fails the whole document.
4. A date with no text after it still produces a record with empty content.

## Records

Every cached record is a JSON object:

` + "```" + `json
{"timestamp": "2024-06-21T00:00:00Z", "content": "Who is Mike?"}
{"timestamp": "2024-06-22T09:30:00Z", "filename": "todo", "content": "buy milk"}
` + "```" + `

- ` + "`timestamp`" + ` is RFC 3339 in UTC. Segmented records carry midnight of their date.
- ` + "`filename`" + ` is present only for records taken whole from another document.
- Identical records are stored once.
`

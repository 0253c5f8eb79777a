package output

// SchemaVersion is the current version of the NDJSON output schema.
// Increment this when making breaking changes to the output format.
// Scripts reading sbsearch output should check it on every record.
const SchemaVersion = 1

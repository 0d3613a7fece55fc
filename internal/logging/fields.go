package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldWorkingDir = "working_dir"

	// Formatting fields.
	FieldLanguage   = "language"
	FieldFormatter  = "formatter"
	FieldPrintWidth = "print_width"
	FieldSkipRoot   = "skip_root"
	FieldByteRange  = "byte_range"
	FieldDuration   = "duration"

	// Registry fields.
	FieldQueryPath = "query_path"
	FieldGrammar   = "grammar"

	// Run statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesFormatted  = "files_formatted"
	FieldFilesDirty      = "files_dirty"
	FieldFilesErrored    = "files_errored"
	FieldJobs            = "jobs"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)

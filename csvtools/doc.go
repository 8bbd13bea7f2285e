// Package csvtools implements the CSV housekeeping actions the agent drives:
// discovering files, fuzzy-matching messy headers against a canonical report
// layout, cleaning individual or whole directories of files, and merging the
// cleaned output into one consolidated report. Every operation satisfies the
// action boundary, so the package plugs into any registry via Toolkit.Register.
package csvtools

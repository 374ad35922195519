// Package csvio reads delimited text one record at a time into a single
// reusable byte record.
//
// Two readers are provided. With quoting enabled records follow RFC 4180
// and quote characters delimit fields. With quoting disabled every line is
// one record and quote characters are ordinary payload bytes, which is what
// width estimation scans with.
//
// Both readers skip empty lines and comment lines, consume the header
// record when the dialect declares one, and enforce a constant field
// count unless the dialect is flexible.
package csvio

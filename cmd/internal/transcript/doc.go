// Package transcript turns pages of envelopes into the final chronological
// text file. Pages arrive newest-to-oldest from the backward walk, each page
// itself newest-to-oldest; the assembler renders every page oldest-first
// into a buffered segment and writes the segments in reverse page order when
// the run ends, so the file reads oldest-to-newest across all pages while
// only rendered text (never raw envelopes) is held in memory.
package transcript

// Package attempt defines the submission record scraped from the Timus status table.
//
// An Attempt is an open mapping from column name to text plus an optional accepted
// flag. The package also owns the chronology helpers used before diffing and the
// conversion of the judge's Russian-locale timestamps into Moscow display time.
package attempt

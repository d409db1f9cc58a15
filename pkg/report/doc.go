// Package report renders audit results into a static HTML report
// directory, one page per detailed view plus a summary front page.
//
// The renderer holds no audit logic: it consumes the typed rows and
// counts the audit package produces, escapes everything except
// designated link columns, and optionally redacts password and hash
// columns for reports that will be shared.
package report

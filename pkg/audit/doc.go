// Package audit turns the finalized correlation store into ordered
// result sets and counts.
//
// # Overview
//
// Every statistic is an independent query over the store after both
// cracking passes have run, restricted to current (non-history)
// records unless a statistic says otherwise. Results come back as
// typed rows so the report renderer can label, link, and redact
// columns without knowing any audit logic.
//
// Sort orders and tie-breaks are fixed: the all-hashes view orders by
// password length descending then password, group views by length
// ascending, ranked views by count descending with a lexicographic
// tie-break, so two runs over the same dump produce byte-identical
// reports.
package audit

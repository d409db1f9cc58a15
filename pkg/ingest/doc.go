// Package ingest parses the heterogeneous input formats of a password
// audit into typed records.
//
// # Overview
//
// Four kinds of files feed the pipeline:
//
//   - NTDS dump: domain\user:rid:lmhash:nthash:... (secretsdump.py)
//   - Potfile: hash:plaintext (hashcat or John the Ripper)
//   - Kerberoastable accounts: NTDS-style or pwdump-style lines
//   - Group rosters: PowerView export or a flat identity list
//
// Parsing is format tolerant throughout: a malformed line is skipped
// and counted, never fatal, because real dump files are full of junk
// rows and a single bad line must not sink a 500k-account audit.
package ingest

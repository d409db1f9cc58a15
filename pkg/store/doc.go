// Package store provides the in-memory credential correlation store.
//
// # Overview
//
// Every surviving line of an NTDS dump becomes one Record. The Store
// indexes records by NT hash, by both LM hash halves, and by full
// username, so that potfile plaintexts, group membership tags, and
// cracking results can be merged onto every matching record in one
// pass:
//
//	st := store.New()
//	st.Insert(rec)
//	st.ApplyPotEntry("4210e68078724566518b8ad3f197a4a6", "Summer2023")
//	st.TagGroup(`corp.local\alice`, "Domain Admins")
//
// Hash collisions across accounts are expected and preserved: two
// records sharing an NT hash share a password, which is exactly what
// the reuse statistics need.
//
// # Password History
//
// secretsdump.py -history emits previous passwords as synthetic
// accounts named <base>_history<N>. Those records carry the base
// username and the history index, and HistoryChains reassembles them
// into one ordered row per base account.
package store

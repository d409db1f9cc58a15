package crack

import (
	"github.com/rs/zerolog"

	"github.com/ntdsaudit/ntdsaudit/pkg/store"
)

// RunLMRecovery walks the store for accounts with at least one
// recovered LM half and no NT-hash password yet, runs the case
// recovery search once per distinct NT hash, and writes any recovered
// password back onto every record sharing that hash.
//
// Accounts already cracked through the potfile are never touched:
// case recovery is strictly a fallback, and a potfile password is
// higher confidence than anything derived here.
//
// A hash backend failure skips only the affected hash group and
// continues with the rest.
//
// Returns the number of NT hash groups attempted and the number
// recovered.
func RunLMRecovery(st *store.Store, log zerolog.Logger) (attempted, recovered int) {
	done := make(map[string]bool)

	for _, r := range st.Records() {
		if r.HasPassword || r.HasBlankLM() {
			continue
		}
		if !r.HasLMLeft && !r.HasLMRight {
			continue
		}
		if done[r.NTHash] {
			continue
		}
		done[r.NTHash] = true
		attempted++

		lmPlaintext := r.LMPassLeft + r.LMPassRight
		password, ok, err := RecoverLMCase(r.NTHash, lmPlaintext)
		if err != nil {
			log.Warn().Err(err).Str("nt_hash", r.NTHash).
				Msg("skipping account, NT hash backend failed")
			continue
		}
		if !ok {
			continue
		}

		for _, sib := range st.ByNTHash(r.NTHash) {
			sib.SetLMRecovered(password)
		}
		recovered++
	}
	return attempted, recovered
}

package report

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ntdsaudit/ntdsaudit/pkg/store"
)

// WriteRecordsCSV exports the full record set, history entries
// included, for offline inspection alongside the HTML report. This
// replaces keeping the correlation store itself around after the run.
func WriteRecordsCSV(path string, st *store.Store) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create records export")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"username_full", "username", "lm_hash", "nt_hash", "password",
		"lm_pass_left", "lm_pass_right", "only_lm_cracked",
		"history_index", "history_base_username", "groups"}
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "write records export")
	}

	for _, r := range st.Records() {
		groups := make([]string, 0, len(r.Groups))
		for g := range r.Groups {
			groups = append(groups, g)
		}
		sort.Strings(groups)

		row := []string{
			r.UsernameFull,
			r.Username,
			r.LMHash,
			r.NTHash,
			r.Password,
			r.LMPassLeft,
			r.LMPassRight,
			strconv.FormatBool(r.OnlyLMCracked),
			strconv.Itoa(r.HistoryIndex),
			r.HistoryBaseUsername,
			strings.Join(groups, ";"),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "write records export")
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "flush records export")
}

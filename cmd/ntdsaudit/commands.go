package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/ntdsaudit/ntdsaudit/pkg/audit"
	"github.com/ntdsaudit/ntdsaudit/pkg/crack"
	"github.com/ntdsaudit/ntdsaudit/pkg/ingest"
	"github.com/ntdsaudit/ntdsaudit/pkg/report"
	"github.com/ntdsaudit/ntdsaudit/pkg/store"
)

// runAudit wires the whole pipeline: ingest, correlate, crack,
// aggregate, render.
func runAudit() error {
	level := zerolog.InfoLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	reportDir := flags.reportDir
	if flags.sanitize {
		reportDir += " - Sanitized"
	}

	// Group rosters come first so tagging can run right after insert.
	var groups []ingest.Group
	if flags.groupsDir != "" {
		var err error
		groups, err = ingest.LoadGroupDir(flags.groupsDir, flags.kerbEncoding, log)
		if err != nil {
			return err
		}
	}

	// NTDS dump.
	filter := ingest.Filter{
		IncludeMachineAccounts: flags.machineAccts,
		IncludeKrbtgt:          flags.krbtgt,
	}
	dump, err := ingest.LoadDump(flags.ntdsFile, filter)
	if err != nil {
		return err
	}
	log.Info().Int("read", dump.Read).Int("unparsed", dump.Unparsed).
		Str("file", flags.ntdsFile).Msg("read NTDS file")
	if dump.Filtered > 0 {
		log.Info().Int("filtered", dump.Filtered).
			Msg("excluded accounts (machine accounts, krbtgt)")
	}

	st := store.New()
	for _, rec := range dump.Records {
		st.Insert(rec)
	}

	for _, g := range groups {
		for _, identity := range g.Members {
			st.TagGroup(identity, g.Name)
		}
	}

	// Potfile correlation.
	entries, skipped, err := ingest.LoadPotfile(flags.crackFile)
	if err != nil {
		return err
	}
	log.Info().Int("entries", len(entries)).Int("skipped", skipped).
		Str("file", flags.crackFile).Msg("read cracking output")
	for _, e := range entries {
		st.ApplyPotEntry(e.Hash, e.Plaintext)
	}

	// LM case recovery for accounts the potfile did not cover.
	attempted, recovered := crack.RunLMRecovery(st, log)
	if attempted > 0 {
		log.Info().Int("attempted", attempted).Int("recovered", recovered).
			Msg("recovered password case from cracked LM hashes")
	}

	// Kerberoastable accounts.
	var kerbNames []string
	if flags.kerbFile != "" {
		kerb, err := ingest.LoadKerberoastFile(flags.kerbFile, flags.kerbEncoding, log)
		if err != nil {
			return err
		}
		if len(kerb) == 0 {
			log.Warn().Msg("kerberoast file contained no valid NTDS lines")
		}
		for _, e := range kerb {
			kerbNames = append(kerbNames, e.UsernameFull)
		}
	}

	// Aggregate and render.
	a := audit.New(st, audit.Config{MinPasswordLength: flags.minPassLen})
	a.SetKerberoastable(kerbNames)
	groupNames := make([]string, 0, len(groups))
	for _, g := range groups {
		groupNames = append(groupNames, g.Name)
	}
	a.SetGroups(groupNames)

	if a.Empty() {
		color.New(color.Bold, color.FgYellow).
			Println("[!] No password hashes found after filtering; writing empty report")
	}

	rn := &report.Renderer{
		Dir:      reportDir,
		MainFile: flags.outFile,
		San:      report.Sanitizer{Enabled: flags.sanitize},
	}
	mainFile, err := rn.Render(a)
	if err != nil {
		return err
	}

	if flags.writeRecords {
		if err := report.WriteRecordsCSV(recordsExportFile, st); err != nil {
			return err
		}
		color.New(color.Bold, color.FgYellow).
			Printf("[+] Correlated records exported to %q\n", recordsExportFile)
	}

	color.New(color.Bold, color.FgGreen).
		Printf("[+] The report has been written to %q in the %q directory\n",
			mainFile, reportDir)

	if !flags.noPrompt && isatty.IsTerminal(os.Stdin.Fd()) {
		promptOpenReport(filepath.Join(reportDir, mainFile))
	}
	return nil
}

// promptOpenReport offers to open the finished report in a browser.
// Empty input counts as yes.
func promptOpenReport(path string) {
	fmt.Println("Would you like to open the report now? [Y/n]")
	sc := bufio.NewScanner(os.Stdin)
	if !sc.Scan() {
		return
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	switch answer {
	case "", "y", "yes", "t", "true", "on", "1":
		if err := openBrowser(path); err != nil {
			fmt.Fprintf(os.Stderr, "[!] Could not open browser: %v\n", err)
		}
	}
}

// openBrowser opens path with the platform's default handler.
func openBrowser(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", abs).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", abs).Start()
	default:
		return exec.Command("xdg-open", abs).Start()
	}
}

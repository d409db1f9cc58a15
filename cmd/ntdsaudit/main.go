package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mjwhitta/cli"
)

// Version info
var version = "0.1.0"

// Exit codes
const (
	ExitSuccess = iota
	ExitError
	ExitMissingArg
)

// Default output locations
const (
	defaultReportFile = "_DomainPasswordAuditReport.html"
	defaultReportDir  = "Password Audit Report"
	recordsExportFile = "pass_audit.csv"
)

// Global flags
var flags struct {
	ntdsFile     string
	crackFile    string
	outFile      string
	reportDir    string
	groupsDir    string
	kerbFile     string
	kerbEncoding string
	minPassLen   int
	machineAccts bool
	krbtgt       bool
	sanitize     bool
	writeRecords bool
	noPrompt     bool
	debug        bool
}

func init() {
	// Optional .env defaults, ignored when absent
	godotenv.Load()

	// Configure cli
	cli.Align = true
	cli.Authors = []string{"ntdsaudit authors"}
	cli.Banner = fmt.Sprintf("%s [OPTIONS]", os.Args[0])
	cli.Info(
		"ntdsaudit - Domain Password Audit Tool",
		"",
		"Correlates an extracted NTDS dump with password cracking",
		"output (such as a hashcat potfile) and produces an HTML",
		"report on password reuse, length, policy violations, LM",
		"exposure, and per-group hygiene.",
	)
	cli.ExitStatus(
		"0 - Success",
		"1 - Error",
	)

	// Define flags (short, long, default, description)
	cli.Flag(&flags.ntdsFile, "n", "ntds", "", "NTDS file (output from secretsdump.py)")
	cli.Flag(&flags.crackFile, "c", "crackfile", "", "Password cracking output, such as hashcat.potfile")
	cli.Flag(&flags.minPassLen, "p", "minpasslen", -1, "Minimum password length from the domain policy")
	cli.Flag(&flags.outFile, "o", "outputfile", defaultReportFile, "Name of the HTML report output file")
	cli.Flag(&flags.reportDir, "d", "reportdirectory", defaultReportDir, "Folder for the output HTML files")
	cli.Flag(&flags.groupsDir, "g", "groupsdirectory", "", "Directory of group membership files (one file per group)")
	cli.Flag(&flags.kerbFile, "k", "kerbfile", "", "File with NTDS lines for Kerberoastable accounts")
	cli.Flag(&flags.kerbEncoding, "e", "ch-encoding", "cp1252", "Encoding of the Kerberoastable and group files")
	cli.Flag(&flags.machineAccts, "m", "machineaccts", false, "Include machine accounts in the statistics")
	cli.Flag(&flags.krbtgt, "krbtgt", false, "Include the krbtgt account")
	cli.Flag(&flags.sanitize, "s", "sanitize", false, "Partially redact passwords and hashes in the report")
	cli.Flag(&flags.writeRecords, "w", "writerecords", false, "Export the correlated records to "+recordsExportFile)
	cli.Flag(&flags.noPrompt, "no-open", false, "Do not offer to open the report in a browser")
	cli.Flag(&flags.debug, "v", "verbose", false, "Verbose output")

	cli.Parse()
}

func main() {
	if flags.ntdsFile == "" {
		fmt.Fprintln(os.Stderr, "Error: NTDS file is required (-n)")
		cli.Usage(ExitMissingArg)
	}
	if flags.crackFile == "" {
		fmt.Fprintln(os.Stderr, "Error: cracking output file is required (-c)")
		cli.Usage(ExitMissingArg)
	}
	if flags.minPassLen < 0 {
		fmt.Fprintln(os.Stderr, "Error: minimum policy password length is required (-p)")
		cli.Usage(ExitMissingArg)
	}

	if err := runAudit(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/ekobres/edgerank/download"
	"github.com/ekobres/edgerank/emit"
	"github.com/ekobres/edgerank/model"
	"github.com/ekobres/edgerank/probe"
)

// cliConfig is the parsed form of the flag table in spec §6. Field names
// mirror the flags loosely; see parseFlags for the exact mapping.
type cliConfig struct {
	showVersion bool

	// Ingestion sources
	ipFile   string
	ipInline string
	ipURL    string

	// URLs
	urlSingle string
	urlList   string
	hu        optionalString

	// Global
	timeout     time.Duration
	portDefault uint16
	portSet     bool
	all4        bool
	concurrency int
	intf        string

	// C2
	attempts         uint16
	earlyStopSuccess uint32
	httping          bool
	icmp             bool
	acceptedStatus   string
	coloFilter       string
	delayMax         float64
	delayMin         float64
	lossMax          float64

	// C3
	skipDownload    bool
	targetQualified uint32
	downloadSeconds uint32
	speedMin        float64

	// Output
	printRows   int
	includePort bool
	csvPath     string
}

// parseFlags parses args against the authoritative flag table of spec §6.
// It returns a config/argument error (never nil on malformed numeric
// args), matching spec §7's "Config error (fatal before C1)" taxonomy.
func parseFlags(args []string) (cliConfig, error) {
	var cfg cliConfig
	fs := flag.NewFlagSet("edgerank", flag.ContinueOnError)

	fs.StringVar(&cfg.urlSingle, "url", "", "single URL used for HTTP latency (TLS) and downloads")
	fs.StringVar(&cfg.urlList, "urlist", "", "URL whose body is a newline-separated list of URLs, used round-robin")
	fs.StringVar(&cfg.ipFile, "f", "", "file of IP/CIDR tokens")
	fs.StringVar(&cfg.ipInline, "ip", "", "inline comma-separated IP/CIDR tokens")
	fs.StringVar(&cfg.ipURL, "ipurl", "", "URL whose body is IP/CIDR tokens")

	var timeoutStr string
	fs.StringVar(&timeoutStr, "timeout", "", "global deadline (seconds, or a duration like 1h3m)")

	var attempts int
	fs.IntVar(&attempts, "t", 4, "attempts per endpoint")
	var dn int
	fs.IntVar(&dn, "dn", 10, "target qualified downloads")
	var dt int
	fs.IntVar(&dt, "dt", 10, "per-endpoint download window, seconds")
	var tp int
	fs.IntVar(&tp, "tp", 0, "default port (443 unless HTTP-ping plaintext, then 80)")
	fs.BoolVar(&cfg.all4, "all4", false, "exhaustively enumerate IPv4 sources (no sampling)")
	var tn int
	fs.IntVar(&tn, "tn", 0, "early-stop latency once N qualified")
	fs.BoolVar(&cfg.httping, "httping", false, "use HTTP_HEAD_PLAINTEXT latency mode")
	fs.Var(&cfg.hu, "hu", "use HTTP_HEAD_TLS latency mode; optional URL overrides -url for latency")
	fs.BoolVar(&cfg.icmp, "icmp", false, "use ICMP_ECHO latency mode (requires raw-socket privilege)")
	fs.BoolVar(&cfg.skipDownload, "dd", false, "skip the download stage")
	fs.StringVar(&cfg.acceptedStatus, "hc", "", "accepted HTTP status codes (default 200,301,302)")
	fs.StringVar(&cfg.coloFilter, "colo", "", "case-insensitive accepted colo codes")
	var n int
	fs.IntVar(&n, "n", 256, "concurrency for the latency probe stage")
	fs.StringVar(&cfg.intf, "intf", "", "outbound interface name or local IP to bind")
	var tl int
	fs.IntVar(&tl, "tl", 2000, "upper delay bound, ms")
	var tll int
	fs.IntVar(&tll, "tll", 0, "lower delay bound, ms")
	fs.Float64Var(&cfg.lossMax, "tlr", 1.0, "loss rate upper bound")
	fs.Float64Var(&cfg.speedMin, "sl", 0, "minimum download rate, MB/s")
	var p int
	fs.IntVar(&p, "p", 10, "rows to print to terminal")
	fs.BoolVar(&cfg.includePort, "sp", false, "include port in printed/CSV output")
	var o optionalString
	fs.Var(&o, "o", "CSV output path (default result.csv; present without value suppresses CSV write)")
	fs.BoolVar(&cfg.showVersion, "version", false, "print version")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if attempts <= 0 {
		return cfg, fmt.Errorf("config: -t must be positive, got %d", attempts)
	}
	if dn < 0 || dt < 0 || n <= 0 || p < -1 {
		return cfg, fmt.Errorf("config: numeric flag out of range")
	}
	modeFlags := 0
	for _, set := range []bool{cfg.httping, cfg.hu.Provided, cfg.icmp} {
		if set {
			modeFlags++
		}
	}
	if modeFlags > 1 {
		return cfg, fmt.Errorf("config: -httping, -hu, and -icmp are mutually exclusive")
	}

	cfg.attempts = uint16(attempts)
	cfg.targetQualified = uint32(dn)
	cfg.downloadSeconds = uint32(dt)
	cfg.earlyStopSuccess = uint32(tn)
	cfg.concurrency = n
	cfg.delayMax = float64(tl)
	cfg.delayMin = float64(tll)
	cfg.printRows = p

	if tp > 0 {
		cfg.portDefault = uint16(tp)
		cfg.portSet = true
	} else if cfg.httping {
		cfg.portDefault = model.DefaultPlaintextPort
	} else {
		cfg.portDefault = model.DefaultTLSPort
	}

	timeout, err := parseDeadline(timeoutStr)
	if err != nil {
		return cfg, fmt.Errorf("config: invalid -timeout %q: %w", timeoutStr, err)
	}
	cfg.timeout = timeout

	if o.Provided && o.Value == "" {
		cfg.csvPath = "" // present without value: suppress CSV write
	} else if o.Provided {
		cfg.csvPath = o.Value
	} else {
		cfg.csvPath = "result.csv"
	}

	return cfg, nil
}

// mode resolves the configured probe mode from -httping/-hu (spec §6).
func (c cliConfig) mode() probe.Mode {
	switch {
	case c.httping:
		return probe.ModeHTTPHeadPlaintext
	case c.hu.Provided:
		return probe.ModeHTTPHeadTLS
	case c.icmp:
		return probe.ModeICMPEcho
	default:
		return probe.ModeTCPConnect
	}
}

// httpURLs resolves the URL(s) used for HTTP-mode latency probing: an
// explicit -hu value wins, otherwise the shared -url/-urlist list (which
// may be empty, letting HTTP_HEAD_PLAINTEXT fall back to its
// "/cdn-cgi/trace" default per spec §4.2).
func (c cliConfig) httpURLs(shared []string) []string {
	if c.hu.Provided && c.hu.Value != "" {
		return []string{c.hu.Value}
	}
	return shared
}

func (c cliConfig) probePolicy() probe.Policy {
	p := probe.DefaultPolicy()
	p.Mode = c.mode()
	p.AttemptsPerEndpoint = c.attempts
	p.PortDefault = c.portDefault
	p.Timeout = time.Duration(c.delayMax) * time.Millisecond
	p.Concurrency = c.concurrency
	p.DelayMinMs = c.delayMin
	p.DelayMaxMs = c.delayMax
	p.LossMax = c.lossMax
	p.EarlyStopSuccess = c.earlyStopSuccess
	p.InterfaceBind = c.intf
	if p.Mode == probe.ModeICMPEcho {
		p.InterAttemptPause = 0
	}

	if status := emit.ParseHTTPStatusSet(c.acceptedStatus); status != nil {
		p.AcceptedHTTPStatus = status
	}
	if colo := emit.ParseColoSet(c.coloFilter); colo != nil {
		p.ColoFilter = colo
	}
	return p
}

func (c cliConfig) downloadPolicy() download.Policy {
	d := download.DefaultPolicy()
	d.TestDuration = time.Duration(c.downloadSeconds) * time.Second
	d.SpeedMinMBs = c.speedMin
	d.TargetQualified = c.targetQualified
	d.InterfaceBind = c.intf
	if colo := emit.ParseColoSet(c.coloFilter); colo != nil {
		d.ColoFilter = colo
	}
	return d
}

// sharedURLs parses -urlist's fetched body (newline-separated) or falls
// back to the single -url value.
func sharedURLs(body string, single string) []string {
	if body != "" {
		var urls []string
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				urls = append(urls, line)
			}
		}
		if len(urls) > 0 {
			return urls
		}
	}
	if single != "" {
		return []string{single}
	}
	return nil
}

package diag

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"
)

// DNSResult reports whether the bound network's resolver answers at all.
type DNSResult struct {
	Server     string        `json:"server"`
	Responsive bool          `json:"responsive"`
	RTT        time.Duration `json:"rtt"`
	Answers    int           `json:"answers"`
	Error      string        `json:"error,omitempty"`
}

// probeDNS sends one query to the resolver the bound network advertises.
// For an IP target it asks for the reverse name, otherwise for an A record.
// Any response at all, including NXDOMAIN, counts as responsive.
func probeDNS(ctx context.Context, server, target string) *DNSResult {
	result := &DNSResult{Server: server}

	msg := new(dns.Msg)
	if net.ParseIP(target) != nil {
		rev, err := dns.ReverseAddr(target)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		msg.SetQuestion(rev, dns.TypePTR)
	} else {
		msg.SetQuestion(dns.Fqdn(target), dns.TypeA)
	}

	client := &dns.Client{Timeout: 2 * time.Second}
	resp, rtt, err := client.ExchangeContext(ctx, msg, net.JoinHostPort(server, "53"))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Responsive = true
	result.RTT = rtt
	result.Answers = len(resp.Answer)
	return result
}

/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

package zonelogic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RenderRecord is the subset of a Record's spec/status needed to render one
// line of a zone file.
type RenderRecord struct {
	// DomainName is the record's spec.domainName, as authored.
	DomainName string
	// FQDN is the record's resolved, absolute status.fqdn, used for
	// suffix-aware ordering.
	FQDN string
	Type string
	// Class is normally defaulted to "IN" by the caller; RenderZoneFile
	// also renders an empty Class as "IN".
	Class string
	TTL   *uint32
	RData string
}

// RenderParams holds everything RenderZoneFile needs to produce the text of
// a zone file for one Zone.
type RenderParams struct {
	FQDN                  string
	Serial                uint32
	Refresh               uint32
	Retry                 uint32
	Expire                uint32
	NegativeResponseCache uint32
	DefaultTTL            uint32
	Records               []RenderRecord
}

// RenderZoneFile produces the RFC 1035 text of p's zone, SOA block first,
// followed by one column-aligned line per record, longest-suffix groups
// first.
func RenderZoneFile(p RenderParams) string {
	// Sorting the segment-reversed names in descending order groups records
	// by shared suffix, with the deeper names of each group on top.
	records := append([]RenderRecord(nil), p.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		return reverseName(records[i].FQDN) > reverseName(records[j].FQDN)
	})

	shortNames := make([]string, len(records))
	width := 0
	for i, r := range records {
		shortNames[i] = shortName(r.DomainName, p.FQDN)
		if len(shortNames[i]) > width {
			width = len(shortNames[i])
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "$ORIGIN %s\n\n", p.FQDN)
	fmt.Fprintf(&b, "%s IN SOA ns.%s noc.%s (\n", p.FQDN, p.FQDN, p.FQDN)
	fmt.Fprintf(&b, "    %d\n", p.Serial)
	fmt.Fprintf(&b, "    %d\n", p.Refresh)
	fmt.Fprintf(&b, "    %d\n", p.Retry)
	fmt.Fprintf(&b, "    %d\n", p.Expire)
	fmt.Fprintf(&b, "    %d\n", p.NegativeResponseCache)
	b.WriteString(")\n\n")

	for i, r := range records {
		ttl := p.DefaultTTL
		if r.TTL != nil {
			ttl = *r.TTL
		}
		class := r.Class
		if class == "" {
			class = "IN"
		}
		fmt.Fprintf(&b, "%-*s %s %s %s %s\n", width, shortNames[i], strconv.FormatUint(uint64(ttl), 10), class, r.Type, r.RData)
	}

	return b.String()
}

// shortName strips the ".<origin>" suffix from domainName, leaving it
// unqualified within the zone's $ORIGIN; domainName is returned unchanged
// if it does not carry that suffix.
func shortName(domainName, origin string) string {
	suffix := "." + origin
	if strings.HasSuffix(domainName, suffix) {
		return strings.TrimSuffix(domainName, suffix)
	}
	return domainName
}

// reverseName reverses the "."-joined segments of name, so that lexical
// ordering of the result groups names by shared suffix.
func reverseName(name string) string {
	name = strings.TrimSuffix(name, ".")
	segs := strings.Split(name, ".")
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return strings.Join(segs, ".")
}

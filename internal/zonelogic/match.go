/*
 * Software Name : Kubizone
 *
 * SPDX-License-Identifier: Apache-2.0
 *
 * This software is distributed under the Apache 2.0 License,
 * see the "LICENSE" file for more details
 */

// Package zonelogic holds the pure, I/O-free core of the DNS tree
// reconciliation: pattern matching, delegation evaluation, content hashing,
// serial rotation and zone-file rendering.
package zonelogic

import "strings"

// Matches reports whether domain satisfies pattern.
//
// Both names are split on ".", compared suffix-first (reversed). A "*"
// segment in pattern matches any number of leading domain segments; a "*"
// embedded within a single non-wildcard-only segment matches a
// prefix/suffix within that one segment only. It does not cross segment
// boundaries: "env-*.example.org" does not match "a.env-dev.example.org".
func Matches(pattern, domain string) bool {
	patSegs := reverseSplit(pattern)
	domSegs := reverseSplit(domain)

	if len(patSegs) != len(domSegs) {
		// Only a bare "*" as the leading (outermost) pattern segment may
		// absorb a variable number of leading domain segments.
		if len(patSegs) == 0 || patSegs[len(patSegs)-1] != "*" {
			return false
		}
		if len(domSegs) < len(patSegs)-1 {
			return false
		}
		for i := 0; i < len(patSegs)-1; i++ {
			if !segmentMatches(patSegs[i], domSegs[i]) {
				return false
			}
		}
		return true
	}

	for i := range patSegs {
		if !segmentMatches(patSegs[i], domSegs[i]) {
			return false
		}
	}
	return true
}

func segmentMatches(pat, dom string) bool {
	if pat == dom {
		return true
	}
	if pat == "*" {
		return true
	}
	idx := strings.IndexByte(pat, '*')
	if idx < 0 {
		return false
	}
	if strings.IndexByte(pat[idx+1:], '*') >= 0 {
		// more than one "*" in a segment isn't a supported pattern shape
		return false
	}
	prefix, suffix := pat[:idx], pat[idx+1:]
	return strings.HasPrefix(dom, prefix) && strings.HasSuffix(dom, suffix)
}

func reverseSplit(name string) []string {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return nil
	}
	segs := strings.Split(name, ".")
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

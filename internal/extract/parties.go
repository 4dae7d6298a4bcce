package extract

import (
	"regexp"
	"strings"
)

// Party strategy tags, in priority order
const (
	PartySourceStructural = "structural"
	PartySourceSignature  = "signature"
	PartySourceLabel      = "label"
	PartySourcePositional = "positional"
)

const (
	labelWindow     = 300  // bytes searched backward from a role tag
	signatureMinLen = 1500 // minimum size of the trailing signature region
	signatureLine   = 80   // longer lines are body text, not signature block
)

var (
	structuralFirst = regexp.MustCompile(`(?is)\bentre\s+(.{3,160}?)[\s,]+(?:con\s+|titular\s+del?\s+|quien\s+acredita\s+(?:su\s+)?identidad\s+con\s+)?` + idMarkerExpr)

	structuralSecond = regexp.MustCompile(`(?is)por\s+una\s+parte[\s,;]*(?:y\s+)?(?:por\s+(?:la\s+)?otra(?:\s+parte)?[\s,:;]*)?(.{3,160}?)(?:\s*[,;(]|\s+con\s|\s+` + idMarkerExpr + `|\s+de\s+nacionalidad|\s+mayor\s+de\s+edad|\s+en\s+adelante)`)

	// roleTag groups: 1 owner quoted, 2 tenant quoted, 3 owner caps, 4 tenant caps
	roleTag = regexp.MustCompile(`"\s*(?i:(?:el|la)\s+)?(?i:(locadora?|propietari[oa]|comodante)|(locatari[oa]|inquilin[oa]|comodatari[oa]))\s*"|\b(?:EL|LA)\s+(?:(LOCADORA?|PROPIETARI[OA]|COMODANTE)|(LOCATARI[OA]|INQUILIN[OA]|COMODATARI[OA]))\b`)

	ownerRole  = regexp.MustCompile(`(?i)\b(?:locadora?|propietari[oa]|comodante)\b`)
	tenantRole = regexp.MustCompile(`(?i)\b(?:locatari[oa]|inquilin[oa]|comodatari[oa])\b`)

	ownerColon  = regexp.MustCompile(`(?i)\b(?:locadora?|propietari[oa]|comodante)\s*:\s*([^\n]{3,120})`)
	tenantColon = regexp.MustCompile(`(?i)\b(?:locatari[oa]|inquilin[oa]|comodatari[oa])\s*:\s*([^\n]{3,120})`)
)

// PartyResult is the outcome of party resolution. Conflict is set when the
// only pairs available name the same person for both roles.
type PartyResult struct {
	Owner        *string
	Tenant       *string
	OwnerSource  string
	TenantSource string
	Conflict     bool
}

// partyStrategy is one independent matcher; either side may come back empty
type partyStrategy struct {
	name  string
	match func(text string) (owner, tenant string)
}

// PartyResolver extracts the two contracting parties
type PartyResolver struct {
	strategies []partyStrategy
}

// NewPartyResolver creates a resolver with the built-in strategy chain
func NewPartyResolver() *PartyResolver {
	return &PartyResolver{
		strategies: []partyStrategy{
			{name: PartySourceStructural, match: matchStructural},
			{name: PartySourceSignature, match: matchSignature},
			{name: PartySourceLabel, match: matchLabels},
			{name: PartySourcePositional, match: matchPositional},
		},
	}
}

// Resolve runs the chain in priority order. The first strategy that yields
// two distinct names wins. A strategy yielding the same name twice is kept
// only as a last resort, after every later strategy had its chance.
func (r *PartyResolver) Resolve(text string) PartyResult {
	var conflicting *PartyResult
	var owners, tenants []sourced

	for _, s := range r.strategies {
		owner, tenant := s.match(text)

		if owner != "" && tenant != "" {
			if !sameName(owner, tenant) {
				return PartyResult{
					Owner:        &owner,
					Tenant:       &tenant,
					OwnerSource:  s.name,
					TenantSource: s.name,
				}
			}
			if conflicting == nil {
				conflicting = &PartyResult{
					Owner:        &owner,
					Tenant:       &tenant,
					OwnerSource:  s.name,
					TenantSource: s.name,
					Conflict:     true,
				}
			}
			continue
		}

		if owner != "" {
			owners = append(owners, sourced{owner, s.name})
		}
		if tenant != "" {
			tenants = append(tenants, sourced{tenant, s.name})
		}
	}

	if conflicting != nil {
		return *conflicting
	}
	return combinePartial(owners, tenants)
}

type sourced struct {
	value  string
	source string
}

// combinePartial stitches single-sided results together, preferring a
// tenant that differs from the chosen owner.
func combinePartial(owners, tenants []sourced) PartyResult {
	var result PartyResult
	if len(owners) > 0 {
		result.Owner = &owners[0].value
		result.OwnerSource = owners[0].source
	}
	if len(tenants) == 0 {
		return result
	}

	pick := tenants[0]
	if result.Owner != nil {
		for _, t := range tenants {
			if !sameName(t.value, *result.Owner) {
				pick = t
				break
			}
		}
		result.Conflict = sameName(pick.value, *result.Owner)
	}
	result.Tenant = &pick.value
	result.TenantSource = pick.source
	return result
}

// matchStructural reads "entre A, DNI ..., por una parte, y por la otra B, ..."
// Role labels are ignored: the first party is the owner.
func matchStructural(text string) (string, string) {
	for _, first := range structuralFirst.FindAllStringSubmatchIndex(text, -1) {
		owner, ok := pickName(text[first[2]:first[3]])
		if !ok {
			continue
		}

		rest := text[first[1]:]
		second := structuralSecond.FindStringSubmatchIndex(rest)
		if second == nil || second[0] > 400 {
			return owner, ""
		}
		tenant, _ := pickName(rest[second[2]:second[3]])
		return owner, tenant
	}
	return "", ""
}

// matchSignature reads the names written next to role tags in the
// signature block at the end of the document. Only short lines count as
// signature lines, so tags inside body paragraphs are ignored.
func matchSignature(text string) (string, string) {
	lines := strings.Split(text[signatureTail(text):], "\n")

	type tagged struct {
		owner        bool
		same         string // name on the tag's own line
		above, below string // names on neighbouring lines
	}
	var tags []tagged

	for i, line := range lines {
		if len(line) > signatureLine {
			continue
		}
		for _, m := range roleTag.FindAllStringSubmatchIndex(line, -1) {
			t := tagged{owner: m[2] >= 0 || m[6] >= 0}
			if name, ok := lastName(line[:m[0]]); ok {
				t.same = name
			} else if name, ok := firstName(line[m[1]:]); ok {
				t.same = name
			}
			if i > 0 && isNameLine(lines[i-1]) {
				t.above, _ = lastName(lines[i-1])
			}
			if i+1 < len(lines) && isNameLine(lines[i+1]) {
				t.below, _ = firstName(lines[i+1])
			}
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return "", ""
	}

	// Layout is decided by the first tag: names written above the tags, or below
	useAbove := tags[0].same != "" || tags[0].above != "" || tags[0].below == ""

	var owner, tenant string
	for _, t := range tags {
		name := t.same
		if name == "" {
			if useAbove {
				name = t.above
			} else {
				name = t.below
			}
		}
		if name == "" {
			continue
		}
		if t.owner && owner == "" {
			owner = name
		}
		if !t.owner && tenant == "" {
			tenant = name
		}
	}
	return owner, tenant
}

// signatureTail returns the offset of the line where the signature region
// begins: the final 30% of the text or its last signatureMinLen bytes,
// whichever is larger.
func signatureTail(text string) int {
	tailLen := len(text) * 3 / 10
	if tailLen < signatureMinLen {
		tailLen = signatureMinLen
	}
	if len(text) <= tailLen {
		return 0
	}
	return strings.LastIndexByte(text[:len(text)-tailLen], '\n') + 1
}

// isNameLine reports whether a neighbouring line can carry a signer's name
func isNameLine(line string) bool {
	return line != "" && len(line) <= signatureLine && !roleTag.MatchString(line)
}

// matchLabels searches backward from each role tag for the nearest name
// followed by an identity marker, then falls back to "LOCADOR: Name" labels.
func matchLabels(text string) (string, string) {
	owner := nameBeforeRole(text, ownerRole)
	if owner == "" {
		owner = nameAfterColon(text, ownerColon)
	}
	tenant := nameBeforeRole(text, tenantRole)
	if tenant == "" {
		tenant = nameAfterColon(text, tenantColon)
	}
	return owner, tenant
}

func nameBeforeRole(text string, role *regexp.Regexp) string {
	for _, loc := range role.FindAllStringIndex(text, -1) {
		from := loc[0] - labelWindow
		if from < 0 {
			from = 0
		}
		if names := namesBeforeID(text[from:loc[0]]); len(names) > 0 {
			return names[len(names)-1].Name
		}
	}
	return ""
}

func nameAfterColon(text string, label *regexp.Regexp) string {
	for _, m := range label.FindAllStringSubmatch(text, -1) {
		if name, ok := cleanName(m[1]); ok {
			return name
		}
	}
	return ""
}

// matchPositional takes the first two distinct names followed by an identity marker
func matchPositional(text string) (string, string) {
	names := namesBeforeID(text)
	if len(names) == 0 {
		return "", ""
	}
	owner := names[0].Name
	for _, n := range names[1:] {
		if !sameName(n.Name, owner) {
			return owner, n.Name
		}
	}
	return owner, ""
}

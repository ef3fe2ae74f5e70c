package gojsonrpc

import "fmt"

// JSONRPCVersion identifies one of the supported protocol dialects. The
// set is closed: every variant the library can inflate has a constant
// here, and version resolution matches explicitly against them.
type JSONRPCVersion uint8

const (
	VersionUnset JSONRPCVersion = iota
	Version10
	Version11
	Version20
)

func (v JSONRPCVersion) String() string {
	switch v {
	case Version10:
		return "1.0"
	case Version11:
		return "1.1"
	case Version20:
		return "2.0"
	}
	return "unset"
}

// wireField names the request member carrying the version string, if the
// dialect has one. JSON-RPC 1.0 predates version advertising.
func (v JSONRPCVersion) wireField() (string, bool) {
	switch v {
	case Version11:
		return "version", true
	case Version20:
		return "jsonrpc", true
	}
	return "", false
}

// ResolveVersion inspects raw request fields and picks the dialect: a
// "jsonrpc" member carries the version string of the 2.x family, a
// "version" member that of the 1.1 family, and a request with neither is
// a 1.0 request.
func ResolveVersion(fields map[string]any) (JSONRPCVersion, error) {
	versionString := "1.0"
	if raw, ok := fields["jsonrpc"]; ok {
		s, ok := raw.(string)
		if !ok {
			return VersionUnset, fmt.Errorf("jsonrpc member must be a string, got %T: %w", raw, ErrMalformedCall)
		}
		versionString = s
	} else if raw, ok := fields["version"]; ok {
		s, ok := raw.(string)
		if !ok {
			return VersionUnset, fmt.Errorf("version member must be a string, got %T: %w", raw, ErrMalformedCall)
		}
		versionString = s
	}
	return matchVersion(versionString)
}

// matchVersion maps the parsed numeric components of a version string to
// a variant. A string without digits never matches anything.
func matchVersion(s string) (JSONRPCVersion, error) {
	runs := digitRuns(s)
	switch {
	case len(runs) == 2 && runs[0] == 1 && runs[1] == 0:
		return Version10, nil
	case len(runs) == 2 && runs[0] == 1 && runs[1] == 1:
		return Version11, nil
	case len(runs) == 2 && runs[0] == 2 && runs[1] == 0:
		return Version20, nil
	}
	return VersionUnset, fmt.Errorf("version %q: %w", s, ErrUnsupportedVersion)
}

// digitRuns extracts every maximal run of digits from s, in order of
// appearance: "2.0" -> [2 0], "v1-draft-1" -> [1 1].
func digitRuns(s string) []int {
	var runs []int
	cur, in := 0, false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			cur = cur*10 + int(r-'0')
			in = true
			continue
		}
		if in {
			runs = append(runs, cur)
			cur, in = 0, false
		}
	}
	if in {
		runs = append(runs, cur)
	}
	return runs
}
